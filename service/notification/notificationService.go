package notifsvc

import (
	"context"
	"errors"
	"log/slog"

	"booklib/model"
	notifrepo "booklib/repository/notification"
)

var ErrNotFound = errors.New("notification not found")

// Service persists user notifications. NotifyUser and NotifyRole are
// best-effort: callers invoke them after their own transaction commits,
// and a delivery failure is logged, never returned.
type Service interface {
	NotifyUser(ctx context.Context, userID int64, message string)
	NotifyRole(ctx context.Context, role string, message string)
	ListMine(ctx context.Context, userID int64) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, notifID int64) error
}

type service struct {
	r   notifrepo.Repo
	log *slog.Logger
}

func New(r notifrepo.Repo, log *slog.Logger) Service {
	return &service{r: r, log: log}
}

func (s *service) NotifyUser(ctx context.Context, userID int64, message string) {
	if err := s.r.Insert(ctx, userID, message); err != nil {
		s.log.Error("notify user failed", "user_id", userID, "err", err)
	}
}

func (s *service) NotifyRole(ctx context.Context, role string, message string) {
	if err := s.r.InsertForRole(ctx, role, message); err != nil {
		s.log.Error("notify role failed", "role", role, "err", err)
	}
}

func (s *service) ListMine(ctx context.Context, userID int64) ([]model.Notification, error) {
	return s.r.ListByUser(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, userID, notifID int64) error {
	ok, err := s.r.MarkRead(ctx, notifID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
