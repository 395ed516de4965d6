package handler

import (
	"net/http"

	"leadintake_backend/internal/agents/service"
	"leadintake_backend/internal/agents/transport"
	"leadintake_backend/platform/httpkit"
	"leadintake_backend/platform/sanitize"
	"leadintake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.UpdateStatus)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	agent, err := h.svc.CreateAgent(c.Request.Context(), service.CreateAgentInput{
		Name:        sanitize.Text(req.Name),
		Email:       req.Email,
		Phone:       req.Phone,
		MaxCapacity: req.MaxCapacity,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.ToAgentResponse(agent))
}

func (h *Handler) List(c *gin.Context) {
	agents, err := h.svc.ListAgents(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAgentResponses(agents))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	agent, err := h.svc.GetAgent(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAgentResponse(agent))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateAgentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.SetStatus(c.Request.Context(), id, req.Status); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": req.Status})
}
