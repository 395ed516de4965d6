package service

import (
	"context"
	"errors"

	"leadintake_backend/internal/agents/policy"
	"leadintake_backend/internal/agents/repository"
	"leadintake_backend/internal/events"
	"leadintake_backend/platform/apperr"
	"leadintake_backend/platform/config"
	"leadintake_backend/platform/logger"
	"leadintake_backend/platform/phone"

	"github.com/google/uuid"
)

const defaultMaxCapacity = 10

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, params repository.CreateAgentParams) (repository.Agent, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Agent, error)
	List(ctx context.Context) ([]repository.Agent, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	IncrementAssigned(ctx context.Context, id uuid.UUID) error
	BestAvailable(ctx context.Context, orderBy string, respectCapacity bool) (*repository.Agent, error)
}

// Service provides business logic for the agent roster.
type Service struct {
	store  Store
	policy policy.Policy
	bus    events.Bus
	cfg    config.AgentsConfig
	log    *logger.Logger
}

func New(store Store, pol policy.Policy, bus events.Bus, cfg config.AgentsConfig, log *logger.Logger) *Service {
	return &Service{store: store, policy: pol, bus: bus, cfg: cfg, log: log}
}

// CreateAgentInput holds the fields for registering an agent.
type CreateAgentInput struct {
	Name        string
	Email       string
	Phone       string
	MaxCapacity int
}

// CreateAgent registers a new agent. Agents start out available, so an
// AgentAvailable event is published to let queued leads drain.
func (s *Service) CreateAgent(ctx context.Context, input CreateAgentInput) (repository.Agent, error) {
	params := repository.CreateAgentParams{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       phone.NormalizeE164(input.Phone, s.cfg.GetDefaultPhoneRegion()),
		MaxCapacity: input.MaxCapacity,
	}
	if params.MaxCapacity <= 0 {
		params.MaxCapacity = defaultMaxCapacity
	}

	agent, err := s.store.Create(ctx, params)
	if err != nil {
		return repository.Agent{}, err
	}

	s.log.Info("agent registered", "agent_id", agent.ID, "name", agent.Name)

	s.bus.Publish(ctx, events.AgentAvailable{
		BaseEvent: events.NewBaseEvent(),
		AgentID:   agent.ID,
	})

	return agent, nil
}

func (s *Service) GetAgent(ctx context.Context, id uuid.UUID) (repository.Agent, error) {
	agent, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Agent{}, apperr.NotFound("agent not found")
	}
	return agent, err
}

func (s *Service) ListAgents(ctx context.Context) ([]repository.Agent, error) {
	return s.store.List(ctx)
}

// SetStatus flips an agent between available and unavailable. Becoming
// available publishes AgentAvailable so queued leads get another chance.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	switch status {
	case repository.StatusAvailable, repository.StatusUnavailable:
	default:
		return apperr.BadRequest("invalid agent status")
	}

	if err := s.store.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("agent not found")
		}
		return err
	}

	s.log.Info("agent status changed", "agent_id", id, "status", status)

	if status == repository.StatusAvailable {
		s.bus.Publish(ctx, events.AgentAvailable{
			BaseEvent: events.NewBaseEvent(),
			AgentID:   id,
		})
	}

	return nil
}

// BestAvailable returns the preferred available agent per the selection
// policy, or nil when nobody can take a lead.
func (s *Service) BestAvailable(ctx context.Context) (*repository.Agent, error) {
	orderBy := `assigned_count ASC, created_at ASC`
	if s.policy.Strategy == policy.StrategyFirstAvailable {
		orderBy = `created_at ASC`
	}
	return s.store.BestAvailable(ctx, orderBy, s.policy.RespectCapacity)
}

// RecordAssignment bumps the agent's assigned lead counter.
func (s *Service) RecordAssignment(ctx context.Context, agentID uuid.UUID) error {
	if err := s.store.IncrementAssigned(ctx, agentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("agent not found")
		}
		return err
	}
	return nil
}
