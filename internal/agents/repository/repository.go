package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an agent does not exist.
var ErrNotFound = errors.New("agent not found")

// Agent statuses.
const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// Agent is a sales agent row.
type Agent struct {
	ID            uuid.UUID
	Name          string
	Email         string
	Phone         string
	Status        string
	AssignedCount int
	MaxCapacity   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateAgentParams holds the fields for a new agent.
type CreateAgentParams struct {
	Name        string
	Email       string
	Phone       string
	MaxCapacity int
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const agentColumns = `id, name, email, phone, status, assigned_count, max_capacity, created_at, updated_at`

func scanAgent(row pgx.Row) (Agent, error) {
	var a Agent
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.Phone,
		&a.Status,
		&a.AssignedCount,
		&a.MaxCapacity,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *Repository) Create(ctx context.Context, params CreateAgentParams) (Agent, error) {
	query := `
		INSERT INTO agents (name, email, phone, max_capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + agentColumns

	return scanAgent(r.pool.QueryRow(ctx, query,
		params.Name,
		params.Email,
		params.Phone,
		params.MaxCapacity,
	))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`

	agent, err := scanAgent(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	return agent, err
}

func (r *Repository) List(ctx context.Context) ([]Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agents := make([]Agent, 0)
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	return agents, rows.Err()
}

func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE agents SET status = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementAssigned bumps the agent's assigned lead counter.
func (r *Repository) IncrementAssigned(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE agents SET assigned_count = assigned_count + 1, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BestAvailable returns the preferred available agent, or nil when every
// agent is unavailable or at capacity. The orderBy clause comes from the
// selection policy, never from request input.
func (r *Repository) BestAvailable(ctx context.Context, orderBy string, respectCapacity bool) (*Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE status = $1`
	if respectCapacity {
		query += ` AND assigned_count < max_capacity`
	}
	query += fmt.Sprintf(` ORDER BY %s LIMIT 1`, orderBy)

	agent, err := scanAgent(r.pool.QueryRow(ctx, query, StatusAvailable))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &agent, nil
}
