// Package domain holds the core lead intake pipeline: the submission
// types, the format validators, and the processor that routes one
// submission to an agent or the waiting queue.
package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Submission is one raw lead as received from an intake source.
// The processor enriches its own copy with Region and AssignedAgentID
// before handing it to the store; callers never set those fields.
type Submission struct {
	Name     string
	Email    string
	Phone    string
	Location string
	Source   string

	Region          string
	AssignedAgentID *uuid.UUID
}

// StoredLead is a persisted lead record.
type StoredLead struct {
	ID              uuid.UUID
	Name            string
	Email           string
	Phone           string
	Location        string
	Region          string
	Source          string
	AssignedAgentID *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WaitingLead is a submission parked on the waiting queue.
type WaitingLead struct {
	ID       uuid.UUID
	Name     string
	Email    string
	Phone    string
	Location string
	Region   string
	Source   string
	QueuedAt time.Time
}

// Submission converts the queued row back into a submission so it can
// be run through the pipeline again once agents free up.
func (w WaitingLead) Submission() Submission {
	return Submission{
		Name:     w.Name,
		Email:    w.Email,
		Phone:    w.Phone,
		Location: w.Location,
		Source:   w.Source,
		Region:   w.Region,
	}
}

// Agent is the slice of a sales agent the pipeline needs.
type Agent struct {
	ID   uuid.UUID
	Name string
}

// OutcomeKind identifies which of the three pipeline paths completed.
type OutcomeKind string

const (
	// OutcomeUpdated means the submission matched an existing lead.
	OutcomeUpdated OutcomeKind = "updated"
	// OutcomeQueued means no agent was available.
	OutcomeQueued OutcomeKind = "queued"
	// OutcomeAssigned means a new lead was created and routed to an agent.
	OutcomeAssigned OutcomeKind = "assigned"
)

// Outcome is the routing decision for one submission.
type Outcome struct {
	Kind    OutcomeKind
	Message string

	// AssignedTo is the agent's display name. Assigned outcome only.
	AssignedTo string
	// Lead is the affected record: the created lead on assignment, or
	// the matched lead as it was found on the update path. Nil when
	// the submission was queued.
	Lead *StoredLead
}

// ValidationError aborts processing before any side effect. Messages
// maps machine-readable keys to user-facing text.
type ValidationError struct {
	Messages map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Messages))
	for key := range e.Messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Messages[key])
	}
	return strings.Join(parts, "; ")
}

func newValidationError(message string) *ValidationError {
	return &ValidationError{Messages: map[string]string{"error": message}}
}
