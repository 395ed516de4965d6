package adapters

import (
	"context"

	agentsservice "leadintake_backend/internal/agents/service"
	"leadintake_backend/internal/intake/domain"
)

// AgentDirectory adapts the agents service to the intake processor's
// agent lookup port.
type AgentDirectory struct {
	svc *agentsservice.Service
}

func NewAgentDirectory(svc *agentsservice.Service) *AgentDirectory {
	return &AgentDirectory{svc: svc}
}

func (a *AgentDirectory) BestAvailableAgent(ctx context.Context) (*domain.Agent, error) {
	agent, err := a.svc.BestAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, nil
	}
	return &domain.Agent{ID: agent.ID, Name: agent.Name}, nil
}
