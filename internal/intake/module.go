// Package intake provides the lead intake bounded context module.
// It owns the submission pipeline, the stored leads, and the waiting
// queue.
package intake

import (
	"leadintake_backend/internal/events"
	apphttp "leadintake_backend/internal/http"
	"leadintake_backend/internal/intake/archive"
	"leadintake_backend/internal/intake/domain"
	"leadintake_backend/internal/intake/handler"
	"leadintake_backend/internal/intake/repository"
	"leadintake_backend/internal/intake/service"
	"leadintake_backend/platform/logger"
	"leadintake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the intake bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the intake module. The agent
// directory and notifier are provided by adapters so this module never
// imports the agents or notification packages.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, directory domain.AgentDirectory, notifier domain.Notifier, archiver archive.Archiver, log *logger.Logger) *Module {
	repo := repository.New(pool)
	processor := domain.NewProcessor(repo, directory, notifier, log)
	svc := service.New(processor, repo, archiver, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intake"
}

// Service returns the intake service for the drain worker and scheduler.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the public submission endpoint on the intake
// group and the operator read API on the admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterIntakeRoutes(ctx.Intake)
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/intake"))
}

// Ensure Module implements the http.Module interface.
var _ apphttp.Module = (*Module)(nil)
