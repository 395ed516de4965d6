package domain

import (
	"context"

	"github.com/google/uuid"
)

// LeadStore is the persistence contract the processor depends on.
// FindByEmailOrPhone returns nil when no lead matches.
type LeadStore interface {
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*StoredLead, error)
	Update(ctx context.Context, id uuid.UUID, sub Submission) error
	Create(ctx context.Context, sub Submission) (StoredLead, error)
	SaveToWaitingQueue(ctx context.Context, sub Submission) error
	LogLeadProcess(ctx context.Context, leadID, agentID uuid.UUID, message string) error
}

// AgentDirectory resolves the best currently available sales agent.
// BestAvailableAgent returns nil when nobody can take a lead.
type AgentDirectory interface {
	BestAvailableAgent(ctx context.Context) (*Agent, error)
}

// Notifier delivers an assignment message to an agent.
type Notifier interface {
	Send(ctx context.Context, agentID uuid.UUID, message string) error
}
