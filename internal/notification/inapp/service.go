package inapp

import (
	"context"

	"leadintake_backend/platform/apperr"
	"leadintake_backend/platform/logger"
	"leadintake_backend/platform/metrics"

	"github.com/google/uuid"
)

// Service stores and queries in-app notifications for agents.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Send persists a notification for the agent. Delivery is the stored row;
// agents poll their notification list.
func (s *Service) Send(ctx context.Context, agentID uuid.UUID, message string) error {
	if s == nil || s.repo == nil {
		return apperr.Internal("notification service not configured")
	}

	n, err := s.repo.Create(ctx, agentID, message)
	if err != nil {
		s.log.Error("failed to persist notification", "error", err, "agent_id", agentID)
		return err
	}

	metrics.NotificationsSentTotal.WithLabelValues("inapp").Inc()
	s.log.Debug("notification stored", "notification_id", n.ID, "agent_id", agentID)
	return nil
}

func (s *Service) List(ctx context.Context, agentID uuid.UUID, page, pageSize int) ([]Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	return s.repo.List(ctx, agentID, pageSize, (page-1)*pageSize)
}

func (s *Service) CountUnread(ctx context.Context, agentID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, agentID)
}

func (s *Service) MarkRead(ctx context.Context, agentID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, agentID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, agentID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, agentID)
}
