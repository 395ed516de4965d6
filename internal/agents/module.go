// Package agents provides the sales agent roster bounded context module.
// It owns agent registration, availability, and assignment load tracking.
package agents

import (
	"context"

	"leadintake_backend/internal/agents/handler"
	"leadintake_backend/internal/agents/policy"
	"leadintake_backend/internal/agents/repository"
	"leadintake_backend/internal/agents/service"
	"leadintake_backend/internal/events"
	apphttp "leadintake_backend/internal/http"
	"leadintake_backend/platform/config"
	"leadintake_backend/platform/logger"
	"leadintake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the agents bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the agents module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.AgentsConfig, log *logger.Logger) (*Module, error) {
	pol, err := policy.Load(cfg.GetAgentPolicyFile())
	if err != nil {
		return nil, err
	}
	log.Info("agent selection policy loaded", "strategy", pol.Strategy, "respect_capacity", pol.RespectCapacity)

	repo := repository.New(pool)
	svc := service.New(repo, pol, eventBus, cfg, log)

	// Track assignment load as leads get assigned. The bus runs handlers
	// asynchronously, so a failed increment only costs ordering fairness.
	eventBus.Subscribe(events.LeadAssigned{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadAssigned)
		if !ok {
			return nil
		}
		return svc.RecordAssignment(ctx, e.AgentID)
	}))

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "agents"
}

// Service returns the agents service for cross-module use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the agents endpoints on the operator admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/agents"))
}

// Ensure Module implements the http.Module interface.
var _ apphttp.Module = (*Module)(nil)
