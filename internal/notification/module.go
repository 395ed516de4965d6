// Package notification provides the agent notification bounded context.
// Assignment messages are stored in-app by the intake pipeline; this module
// also subscribes to assignment events and mirrors them to email, inverting
// the dependency so intake never knows about SMTP or templates.
package notification

import (
	"context"

	agentsrepo "leadintake_backend/internal/agents/repository"
	"leadintake_backend/internal/email"
	"leadintake_backend/internal/events"
	apphttp "leadintake_backend/internal/http"
	"leadintake_backend/internal/notification/handler"
	"leadintake_backend/internal/notification/inapp"
	"leadintake_backend/platform/logger"
	"leadintake_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AgentReader resolves agent contact details for email delivery.
type AgentReader interface {
	GetAgent(ctx context.Context, id uuid.UUID) (agentsrepo.Agent, error)
}

// Module is the notification bounded context module implementing http.Module.
type Module struct {
	handler *handler.HTTPHandler
	inapp   *inapp.Service
	sender  email.Sender
	agents  AgentReader
	log     *logger.Logger
}

// NewModule creates and initializes the notification module. The sender may
// be nil when email delivery is disabled.
func NewModule(pool *pgxpool.Pool, sender email.Sender, agents AgentReader, log *logger.Logger) *Module {
	svc := inapp.NewService(inapp.NewRepository(pool), log)

	return &Module{
		handler: handler.NewHTTPHandler(svc),
		inapp:   svc,
		sender:  sender,
		agents:  agents,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// InApp returns the in-app notification service for cross-module use.
func (m *Module) InApp() *inapp.Service {
	return m.inapp
}

// RegisterRoutes mounts the notification endpoints on the admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/notifications"))
}

// RegisterHandlers subscribes to the domain events this module reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadAssigned{}.EventName(), m)
	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadAssigned:
		return m.handleLeadAssigned(ctx, e)
	}
	return nil
}

// handleLeadAssigned mirrors the stored in-app notification to email.
// Delivery is best effort: failures are logged, never bubbled back into
// the intake pipeline.
func (m *Module) handleLeadAssigned(ctx context.Context, e events.LeadAssigned) error {
	if m.sender == nil || m.agents == nil {
		return nil
	}

	agent, err := m.agents.GetAgent(ctx, e.AgentID)
	if err != nil {
		m.log.Error("failed to resolve agent for assignment email", "error", err, "agent_id", e.AgentID)
		return nil
	}
	if agent.Email == "" {
		return nil
	}

	if err := m.sender.SendLeadAssignedEmail(ctx, agent.Email, agent.Name, e.LeadName, e.LeadEmail, e.LeadPhone, e.LeadLocation); err != nil {
		m.log.Error("failed to send lead assigned email", "error", err, "agent_id", e.AgentID, "lead_id", e.LeadID)
		return nil
	}

	metrics.NotificationsSentTotal.WithLabelValues("email").Inc()
	return nil
}

// Ensure Module implements the required interfaces.
var (
	_ apphttp.Module = (*Module)(nil)
	_ events.Handler = (*Module)(nil)
)
