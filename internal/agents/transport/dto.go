// Package transport defines the request and response DTOs for the agents API.
package transport

import (
	"time"

	"leadintake_backend/internal/agents/repository"

	"github.com/google/uuid"
)

// CreateAgentRequest registers a new sales agent.
type CreateAgentRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,min=7,max=20"`
	MaxCapacity int    `json:"maxCapacity" validate:"omitempty,min=1,max=1000"`
}

// UpdateAgentStatusRequest flips an agent's availability.
type UpdateAgentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available unavailable"`
}

// AgentResponse is the wire representation of an agent.
type AgentResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Status        string    `json:"status"`
	AssignedCount int       `json:"assignedCount"`
	MaxCapacity   int       `json:"maxCapacity"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func ToAgentResponse(a repository.Agent) AgentResponse {
	return AgentResponse{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Phone:         a.Phone,
		Status:        a.Status,
		AssignedCount: a.AssignedCount,
		MaxCapacity:   a.MaxCapacity,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func ToAgentResponses(agents []repository.Agent) []AgentResponse {
	out := make([]AgentResponse, 0, len(agents))
	for _, a := range agents {
		out = append(out, ToAgentResponse(a))
	}
	return out
}
