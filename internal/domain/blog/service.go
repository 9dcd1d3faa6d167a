package blog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/internal/platform/middleware"
	"github.com/carepoint/portal/pkg/pagination"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListPublished serves the public listing; drafts never appear.
func (s *Service) ListPublished(ctx context.Context, f Filter, p pagination.Params) ([]*Post, int, error) {
	f.PublishedOnly = true
	f.AuthorID = nil
	return s.repo.List(ctx, f, p)
}

func (s *Service) GetPublished(ctx context.Context, slug string) (*Post, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if errors.Is(err, db.ErrNotFound) || (err == nil && post.Status != StatusPublished) {
		return nil, httpx.NotFound("blog post not found")
	}
	return post, err
}

// ListOwn returns the caller's posts in any status. Admins see every post.
func (s *Service) ListOwn(ctx context.Context, caller *auth.Caller, f Filter, p pagination.Params) ([]*Post, int, error) {
	f.PublishedOnly = false
	if !caller.Is(auth.RoleAdmin) {
		f.AuthorID = &caller.UserID
	}
	return s.repo.List(ctx, f, p)
}

func (s *Service) Create(ctx context.Context, caller *auth.Caller, req CreateRequest) (*Post, error) {
	post := &Post{
		AuthorID: caller.UserID,
		Title:    middleware.SanitizeString(req.Title),
		Content:  middleware.SanitizeString(req.Content),
		Excerpt:  sanitizePtr(req.Excerpt),
		Tags:     cleanTags(req.Tags),
		Status:   req.Status,
	}
	if post.Title == "" || post.Content == "" {
		return nil, httpx.BadRequest("title and content must not be blank")
	}
	if post.Status == "" {
		post.Status = StatusDraft
	}
	if post.Status == StatusPublished {
		now := s.now().UTC()
		post.PublishedAt = &now
	}

	slug, err := s.resolveSlug(ctx, req.Slug, post.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}
	post.Slug = slug

	if err := s.repo.Create(ctx, post); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, slugConflict()
		}
		return nil, err
	}
	return post, nil
}

// Update edits a post. published_at is set the first time a post is
// published and kept afterwards, even if it goes back to draft.
func (s *Service) Update(ctx context.Context, caller *auth.Caller, id uuid.UUID, req UpdateRequest) (*Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.NotFound("blog post not found")
	}
	if err != nil {
		return nil, err
	}
	if post.AuthorID != caller.UserID && !caller.Is(auth.RoleAdmin) {
		return nil, httpx.Forbidden("only the author can edit this post")
	}

	if req.Title != nil {
		post.Title = middleware.SanitizeString(*req.Title)
	}
	if req.Content != nil {
		post.Content = middleware.SanitizeString(*req.Content)
	}
	if post.Title == "" || post.Content == "" {
		return nil, httpx.BadRequest("title and content must not be blank")
	}
	if req.Excerpt != nil {
		post.Excerpt = sanitizePtr(req.Excerpt)
	}
	if req.Tags != nil {
		post.Tags = cleanTags(req.Tags)
	}
	if req.Status != nil {
		post.Status = *req.Status
	}
	if post.Status == StatusPublished && post.PublishedAt == nil {
		now := s.now().UTC()
		post.PublishedAt = &now
	}
	if req.Slug != nil && *req.Slug != post.Slug {
		slug, err := s.resolveSlug(ctx, *req.Slug, post.Title, post.ID)
		if err != nil {
			return nil, err
		}
		post.Slug = slug
	}

	if err := s.repo.Update(ctx, post); err != nil {
		switch {
		case errors.Is(err, db.ErrConflict):
			return nil, slugConflict()
		case errors.Is(err, db.ErrNotFound):
			return nil, httpx.NotFound("blog post not found")
		}
		return nil, err
	}
	return post, nil
}

// resolveSlug checks an explicit slug or derives one from the title. The
// pre-check gives a clean 409; the unique index still catches a race.
func (s *Service) resolveSlug(ctx context.Context, requested, title string, self uuid.UUID) (string, error) {
	slug := requested
	if slug == "" {
		slug = Slugify(title)
		if slug == "" {
			return "", httpx.BadRequest("cannot derive a slug from the title, provide one")
		}
	} else if !ValidSlug(slug) {
		return "", httpx.BadRequest("slug may only contain lower-case letters, digits and hyphens")
	}

	taken, err := s.repo.SlugTaken(ctx, slug, self)
	if err != nil {
		return "", err
	}
	if taken {
		return "", slugConflict()
	}
	return slug, nil
}

func slugConflict() *httpx.Error {
	return httpx.Conflict("a blog post with this slug already exists")
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := middleware.SanitizeString(*s)
	return &clean
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = middleware.SanitizeString(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
