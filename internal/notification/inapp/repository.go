package inapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadintake_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate      = "notification.inapp.repository.create"
	opList        = "notification.inapp.repository.list"
	opCountUnread = "notification.inapp.repository.count_unread"
	opMarkRead    = "notification.inapp.repository.mark_read"
	opMarkAllRead = "notification.inapp.repository.mark_all_read"
)

// Notification is an in-app message stored for an agent.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	AgentID   uuid.UUID `json:"agentId"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const notificationColumns = `id, agent_id, message, read, created_at`

func (r *Repository) Create(ctx context.Context, agentID uuid.UUID, message string) (Notification, error) {
	if agentID == uuid.Nil {
		return Notification{}, apperr.Validation("agentId is required").WithOp(opCreate)
	}
	if message == "" {
		return Notification{}, apperr.Validation("message is required").WithOp(opCreate)
	}

	var n Notification
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (agent_id, message)
		VALUES ($1, $2)
		RETURNING `+notificationColumns+`
	`, agentID, message).Scan(&n.ID, &n.AgentID, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Notification{}, apperr.Validation("unknown agentId").WithOp(opCreate)
		}
		return Notification{}, apperr.Internal(fmt.Sprintf("create notification failed: %v", err)).WithOp(opCreate)
	}

	return n, nil
}

func (r *Repository) List(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE agent_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, agentID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list notifications failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	items := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.AgentID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan notification failed: %v", err)).WithOp(opList)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r *Repository) CountUnread(ctx context.Context, agentID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE agent_id = $1 AND read = false
	`, agentID).Scan(&count)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("count unread failed: %v", err)).WithOp(opCountUnread)
	}
	return count, nil
}

func (r *Repository) MarkRead(ctx context.Context, agentID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read = true WHERE id = $1 AND agent_id = $2
	`, id, agentID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark read failed: %v", err)).WithOp(opMarkRead)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification not found").WithOp(opMarkRead)
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, agentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read = true WHERE agent_id = $1 AND read = false
	`, agentID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark all read failed: %v", err)).WithOp(opMarkAllRead)
	}
	return nil
}
