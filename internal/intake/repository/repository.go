package repository

import (
	"context"
	"errors"
	"time"

	"leadintake_backend/internal/intake/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, name, email, phone, location, region, source, assigned_agent_id, created_at, updated_at`

func scanLead(row pgx.Row) (domain.StoredLead, error) {
	var lead domain.StoredLead
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Location,
		&lead.Region, &lead.Source, &lead.AssignedAgentID,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

// FindByEmailOrPhone returns the most recent lead matching either contact
// field, or nil when no lead matches. Empty fields never match.
func (r *Repository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.StoredLead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE (email = $1 AND email <> '') OR (phone = $2 AND phone <> '')
		ORDER BY created_at DESC
		LIMIT 1
	`, email, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *Repository) Create(ctx context.Context, sub domain.Submission) (domain.StoredLead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, location, region, source, assigned_agent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+leadColumns+`
	`, sub.Name, sub.Email, sub.Phone, sub.Location, sub.Region, sub.Source, sub.AssignedAgentID))
	if err != nil {
		return domain.StoredLead{}, err
	}
	return lead, nil
}

// Update refreshes an existing lead with the submission as received.
// Region and assignment are left untouched: the update path never
// computes them.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, sub domain.Submission) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET name = $2, email = $3, phone = $4, location = $5, source = $6, updated_at = now()
		WHERE id = $1
	`, id, sub.Name, sub.Email, sub.Phone, sub.Location, sub.Source)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SaveToWaitingQueue(ctx context.Context, sub domain.Submission) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO waiting_leads (name, email, phone, location, region, source)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sub.Name, sub.Email, sub.Phone, sub.Location, sub.Region, sub.Source)
	return err
}

func (r *Repository) LogLeadProcess(ctx context.Context, leadID, agentID uuid.UUID, message string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_activity (lead_id, agent_id, message)
		VALUES ($1, $2, $3)
	`, leadID, agentID, message)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.StoredLead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StoredLead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) ListLeads(ctx context.Context, limit, offset int) ([]domain.StoredLead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]domain.StoredLead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

const waitingColumns = `id, name, email, phone, location, region, source, queued_at`

func scanWaiting(row pgx.Row) (domain.WaitingLead, error) {
	var w domain.WaitingLead
	err := row.Scan(
		&w.ID, &w.Name, &w.Email, &w.Phone, &w.Location,
		&w.Region, &w.Source, &w.QueuedAt,
	)
	return w, err
}

func (r *Repository) ListWaiting(ctx context.Context, limit int) ([]domain.WaitingLead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+waitingColumns+`
		FROM waiting_leads
		ORDER BY queued_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	waiting := make([]domain.WaitingLead, 0)
	for rows.Next() {
		w, err := scanWaiting(rows)
		if err != nil {
			return nil, err
		}
		waiting = append(waiting, w)
	}

	return waiting, rows.Err()
}

func (r *Repository) CountWaiting(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM waiting_leads`).Scan(&count)
	return count, err
}

// ClaimOldestWaiting atomically removes and returns the oldest queued
// lead. Concurrent drains skip locked rows instead of blocking, so two
// workers never claim the same lead. Returns nil when the queue is empty.
func (r *Repository) ClaimOldestWaiting(ctx context.Context) (*domain.WaitingLead, error) {
	w, err := scanWaiting(r.pool.QueryRow(ctx, `
		DELETE FROM waiting_leads
		WHERE id = (
			SELECT id FROM waiting_leads
			ORDER BY queued_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING `+waitingColumns+`
	`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Activity is one audit log entry for a lead.
type Activity struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	AgentID   *uuid.UUID
	Message   string
	CreatedAt time.Time
}

func (r *Repository) ListLeadActivity(ctx context.Context, leadID uuid.UUID) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, agent_id, message, created_at
		FROM lead_activity
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		var item Activity
		if err := rows.Scan(&item.ID, &item.LeadID, &item.AgentID, &item.Message, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
