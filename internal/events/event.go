// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadintake_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Intake Domain Events
// =============================================================================

// LeadCreated is published when a new lead is persisted, whether or not
// an agent could be assigned.
type LeadCreated struct {
	BaseEvent
	LeadID          uuid.UUID  `json:"leadId"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Location        string     `json:"location"`
	Region          string     `json:"region"`
	Source          string     `json:"source"`
	AssignedAgentID *uuid.UUID `json:"assignedAgentId,omitempty"`
}

func (e LeadCreated) EventName() string { return "intake.lead.created" }

// LeadAssigned is published when a lead is assigned to a sales agent.
// It carries the lead's contact details so notification handlers do not
// have to read the lead back.
type LeadAssigned struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	LeadName     string    `json:"leadName"`
	LeadEmail    string    `json:"leadEmail"`
	LeadPhone    string    `json:"leadPhone"`
	LeadLocation string    `json:"leadLocation"`
	AgentID      uuid.UUID `json:"agentId"`
	AgentName    string    `json:"agentName"`
}

func (e LeadAssigned) EventName() string { return "intake.lead.assigned" }

// LeadUpdated is published when a submission matches an existing lead
// and refreshes its contact details.
type LeadUpdated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Source string    `json:"source"`
}

func (e LeadUpdated) EventName() string { return "intake.lead.updated" }

// LeadQueued is published when no agent is available and the lead is
// parked on the waiting queue.
type LeadQueued struct {
	BaseEvent
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Source   string `json:"source"`
}

func (e LeadQueued) EventName() string { return "intake.lead.queued" }

// =============================================================================
// Agents Domain Events
// =============================================================================

// AgentAvailable is published when an agent becomes available for work,
// either on creation or when an operator flips their status back.
type AgentAvailable struct {
	BaseEvent
	AgentID uuid.UUID `json:"agentId"`
}

func (e AgentAvailable) EventName() string { return "agents.agent.available" }
