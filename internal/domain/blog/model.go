package blog

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type Post struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	AuthorID    uuid.UUID  `db:"author_id" json:"author_id"`
	AuthorName  string     `db:"author_name" json:"author_name,omitempty"`
	Title       string     `db:"title" json:"title"`
	Slug        string     `db:"slug" json:"slug"`
	Excerpt     *string    `db:"excerpt" json:"excerpt,omitempty"`
	Content     string     `db:"content" json:"content"`
	Tags        []string   `db:"tags" json:"tags"`
	Status      Status     `db:"status" json:"status"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateRequest struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Slug    string   `json:"slug" validate:"omitempty,max=120"`
	Excerpt *string  `json:"excerpt" validate:"omitempty,max=500"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags" validate:"omitempty,max=10,dive,max=40"`
	Status  Status   `json:"status" validate:"omitempty,oneof=draft published"`
}

type UpdateRequest struct {
	Title   *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Slug    *string  `json:"slug" validate:"omitempty,max=120"`
	Excerpt *string  `json:"excerpt" validate:"omitempty,max=500"`
	Content *string  `json:"content" validate:"omitempty,min=1"`
	Tags    []string `json:"tags" validate:"omitempty,max=10,dive,max=40"`
	Status  *Status  `json:"status" validate:"omitempty,oneof=draft published"`
}

type Filter struct {
	AuthorID      *uuid.UUID
	Status        *Status
	PublishedOnly bool
	Tag           string
	Search        string
}
