package blog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

type mockRepo struct {
	mu   sync.Mutex
	data map[uuid.UUID]*Post
}

func newMockRepo() *mockRepo {
	return &mockRepo{data: make(map[uuid.UUID]*Post)}
}

func (m *mockRepo) slugUsed(slug string, except uuid.UUID) bool {
	for id, p := range m.data {
		if id != except && p.Slug == slug {
			return true
		}
	}
	return false
}

func (m *mockRepo) Create(_ context.Context, p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugUsed(p.Slug, uuid.Nil) {
		return db.ErrConflict
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.data[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) GetBySlug(_ context.Context, slug string) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.data {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockRepo) List(_ context.Context, f Filter, _ pagination.Params) ([]*Post, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Post
	for _, p := range m.data {
		if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
			continue
		}
		if f.PublishedOnly && p.Status != StatusPublished {
			continue
		}
		if !f.PublishedOnly && f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Tag != "" && !contains(p.Tags, f.Tag) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Content), strings.ToLower(f.Search)) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m *mockRepo) Update(_ context.Context, p *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[p.ID]; !ok {
		return db.ErrNotFound
	}
	if m.slugUsed(p.Slug, p.ID) {
		return db.ErrConflict
	}
	p.UpdatedAt = time.Now()
	cp := *p
	m.data[p.ID] = &cp
	return nil
}

func (m *mockRepo) SlugTaken(_ context.Context, slug string, except uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugUsed(slug, except), nil
}
