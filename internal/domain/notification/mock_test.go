package notification

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/websocket"
	"github.com/carepoint/portal/pkg/pagination"
)

type mockRepo struct {
	mu        sync.Mutex
	data      map[uuid.UUID]*Notification
	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{data: make(map[uuid.UUID]*Notification)}
}

func (m *mockRepo) Create(_ context.Context, n *Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	m.data[n.ID] = n
	return nil
}

func (m *mockRepo) forUser(userID uuid.UUID, unreadOnly bool) []*Notification {
	var out []*Notification
	for _, n := range m.data {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockRepo) ListForUser(_ context.Context, userID uuid.UUID, unreadOnly bool, p pagination.Params) ([]*Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.forUser(userID, unreadOnly)
	end := p.Offset + p.Limit
	if end > len(all) {
		end = len(all)
	}
	if p.Offset > len(all) {
		return nil, len(all), nil
	}
	return all[p.Offset:end], len(all), nil
}

func (m *mockRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.forUser(userID, true)), nil
}

func (m *mockRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.data[id]
	if !ok || n.UserID != userID {
		return db.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (m *mockRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.forUser(userID, true) {
		row.IsRead = true
		n++
	}
	return n, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e websocket.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

var errStore = errors.New("insert failed")
