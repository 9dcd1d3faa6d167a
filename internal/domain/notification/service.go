package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/pkg/pagination"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, caller *auth.Caller, unreadOnly bool, p pagination.Params) ([]*Notification, int, error) {
	return s.repo.ListForUser(ctx, caller.UserID, unreadOnly, p)
}

func (s *Service) UnreadCount(ctx context.Context, caller *auth.Caller) (int, error) {
	return s.repo.UnreadCount(ctx, caller.UserID)
}

// MarkRead answers 404 for another user's notification so ids cannot be
// probed.
func (s *Service) MarkRead(ctx context.Context, caller *auth.Caller, id uuid.UUID) error {
	err := s.repo.MarkRead(ctx, id, caller.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return httpx.NotFound("notification not found")
	}
	return err
}

func (s *Service) MarkAllRead(ctx context.Context, caller *auth.Caller) (int64, error) {
	return s.repo.MarkAllRead(ctx, caller.UserID)
}
