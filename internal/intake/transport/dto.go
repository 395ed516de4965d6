// Package transport defines the request and response DTOs for the
// intake API.
package transport

import (
	"time"

	"leadintake_backend/internal/intake/domain"
	"leadintake_backend/internal/intake/repository"

	"github.com/google/uuid"
)

// SubmitLeadRequest is one lead submission from an intake source.
// Email and phone format rules live in the pipeline, not here; the only
// transport-level requirement is a name and sane field lengths.
type SubmitLeadRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Email    string `json:"email" validate:"omitempty,max=320"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Location string `json:"location" validate:"omitempty,max=200"`
}

// SubmitLeadResponse mirrors the pipeline outcome.
type SubmitLeadResponse struct {
	Message    string     `json:"message"`
	AssignedTo string     `json:"assignedTo,omitempty"`
	LeadID     *uuid.UUID `json:"leadId,omitempty"`
}

func ToSubmitResponse(outcome *domain.Outcome) SubmitLeadResponse {
	resp := SubmitLeadResponse{Message: outcome.Message}
	if outcome.Kind == domain.OutcomeAssigned {
		resp.AssignedTo = outcome.AssignedTo
	}
	if outcome.Lead != nil {
		id := outcome.Lead.ID
		resp.LeadID = &id
	}
	return resp
}

// DuplicateCheckResponse tells an intake source whether the contact
// info already matches a stored lead. Only the lead id is disclosed.
type DuplicateCheckResponse struct {
	IsDuplicate bool       `json:"isDuplicate"`
	LeadID      *uuid.UUID `json:"leadId,omitempty"`
}

func ToDuplicateCheckResponse(lead *domain.StoredLead) DuplicateCheckResponse {
	if lead == nil {
		return DuplicateCheckResponse{}
	}
	id := lead.ID
	return DuplicateCheckResponse{IsDuplicate: true, LeadID: &id}
}

// LeadResponse is the wire representation of a stored lead.
type LeadResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Location        string     `json:"location"`
	Region          string     `json:"region"`
	Source          string     `json:"source"`
	AssignedAgentID *uuid.UUID `json:"assignedAgentId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func ToLeadResponse(lead domain.StoredLead) LeadResponse {
	return LeadResponse{
		ID:              lead.ID,
		Name:            lead.Name,
		Email:           lead.Email,
		Phone:           lead.Phone,
		Location:        lead.Location,
		Region:          lead.Region,
		Source:          lead.Source,
		AssignedAgentID: lead.AssignedAgentID,
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
	}
}

func ToLeadResponses(leads []domain.StoredLead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, ToLeadResponse(lead))
	}
	return out
}

// WaitingLeadResponse is the wire representation of a queued lead.
type WaitingLeadResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Location string    `json:"location"`
	Region   string    `json:"region"`
	Source   string    `json:"source"`
	QueuedAt time.Time `json:"queuedAt"`
}

func ToWaitingLeadResponses(waiting []domain.WaitingLead) []WaitingLeadResponse {
	out := make([]WaitingLeadResponse, 0, len(waiting))
	for _, w := range waiting {
		out = append(out, WaitingLeadResponse{
			ID:       w.ID,
			Name:     w.Name,
			Email:    w.Email,
			Phone:    w.Phone,
			Location: w.Location,
			Region:   w.Region,
			Source:   w.Source,
			QueuedAt: w.QueuedAt,
		})
	}
	return out
}

// ActivityResponse is one audit log entry for a lead.
type ActivityResponse struct {
	ID        uuid.UUID  `json:"id"`
	LeadID    uuid.UUID  `json:"leadId"`
	AgentID   *uuid.UUID `json:"agentId,omitempty"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"createdAt"`
}

func ToActivityResponses(items []repository.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(items))
	for _, a := range items {
		out = append(out, ActivityResponse{
			ID:        a.ID,
			LeadID:    a.LeadID,
			AgentID:   a.AgentID,
			Message:   a.Message,
			CreatedAt: a.CreatedAt,
		})
	}
	return out
}
