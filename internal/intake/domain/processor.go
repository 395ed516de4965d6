package domain

import (
	"context"
	"fmt"

	"leadintake_backend/platform/logger"
)

// Outcome messages returned to callers. Responses and tests rely on the
// exact wording.
const (
	MessageLeadUpdated  = "Lead updated"
	MessageLeadQueued   = "No available sales agents. Lead added to waiting queue."
	MessageLeadAssigned = "New lead created and assigned"

	auditLeadAssigned = "Lead assigned successfully"
)

// Processor routes one lead submission through validation,
// deduplication, regionalization, and agent assignment.
type Processor struct {
	store    LeadStore
	agents   AgentDirectory
	notifier Notifier
	log      *logger.Logger
}

// NewProcessor creates a processor over the given collaborators.
func NewProcessor(store LeadStore, agents AgentDirectory, notifier Notifier, log *logger.Logger) *Processor {
	return &Processor{
		store:    store,
		agents:   agents,
		notifier: notifier,
		log:      log,
	}
}

// Process runs the intake pipeline for a single submission.
//
// Validation runs before any collaborator call, so a rejected submission
// has no side effects. Collaborator errors are returned to the caller
// as-is; the processor neither wraps nor retries them.
func (p *Processor) Process(ctx context.Context, sub Submission) (*Outcome, error) {
	if sub.Email == "" && sub.Phone == "" {
		return nil, newValidationError("Lead must have email or phone number")
	}

	// Both fields must validate even when only one was supplied. A lead
	// carrying just a valid email still fails here because the empty
	// phone does not match.
	if !IsValidEmail(sub.Email) || !IsValidPhone(sub.Phone) {
		return nil, newValidationError("Invalid email or phone format")
	}

	existing, err := p.store.FindByEmailOrPhone(ctx, sub.Email, sub.Phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Refresh the record with the submission as received. Region is
		// never computed on the update path.
		if err := p.store.Update(ctx, existing.ID, sub); err != nil {
			return nil, err
		}
		p.log.Debug("lead updated", "lead_id", existing.ID)
		return &Outcome{Kind: OutcomeUpdated, Message: MessageLeadUpdated, Lead: existing}, nil
	}

	if sub.Location != "" {
		sub.Region = DetermineRegion(sub.Location)
	}

	agent, err := p.agents.BestAvailableAgent(ctx)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		if err := p.store.SaveToWaitingQueue(ctx, sub); err != nil {
			return nil, err
		}
		p.log.Debug("lead queued", "name", sub.Name)
		return &Outcome{Kind: OutcomeQueued, Message: MessageLeadQueued}, nil
	}

	sub.AssignedAgentID = &agent.ID
	created, err := p.store.Create(ctx, sub)
	if err != nil {
		return nil, err
	}

	if err := p.notifier.Send(ctx, agent.ID, fmt.Sprintf("New lead assigned: %s", created.Name)); err != nil {
		return nil, err
	}

	if err := p.store.LogLeadProcess(ctx, created.ID, agent.ID, auditLeadAssigned); err != nil {
		return nil, err
	}

	p.log.Debug("lead assigned", "lead_id", created.ID, "agent_id", agent.ID)
	return &Outcome{
		Kind:       OutcomeAssigned,
		Message:    MessageLeadAssigned,
		AssignedTo: agent.Name,
		Lead:       &created,
	}, nil
}
