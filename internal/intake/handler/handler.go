package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"leadintake_backend/internal/intake/domain"
	"leadintake_backend/internal/intake/service"
	"leadintake_backend/internal/intake/transport"
	"leadintake_backend/internal/sources"
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

// RegisterIntakeRoutes mounts the public submission endpoints.
func (h *Handler) RegisterIntakeRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads", h.Submit)
	rg.GET("/leads/check-duplicate", h.CheckDuplicate)
}

// RegisterAdminRoutes mounts the operator read API.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads", h.ListLeads)
	rg.GET("/leads/:id", h.GetLead)
	rg.GET("/leads/:id/activity", h.LeadActivity)
	rg.GET("/queue", h.ListWaiting)
	rg.POST("/queue/drain", h.DrainQueue)
}

// Submit accepts one lead submission.
// POST /api/v1/intake/leads
func (h *Handler) Submit(c *gin.Context) {
	// Keep the raw bytes so the submission can be archived verbatim.
	body, err := c.GetRawData()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.SubmitLeadRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	// Email and phone stay raw: the pipeline's format rules must see the
	// submission exactly as it arrived.
	sub := domain.Submission{
		Name:     sanitize.Text(req.Name),
		Email:    req.Email,
		Phone:    req.Phone,
		Location: sanitize.Text(req.Location),
		Source:   sources.SourceFromContext(c),
	}

	outcome, err := h.svc.Submit(c.Request.Context(), sub, body)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			httpkit.Error(c, http.StatusUnprocessableEntity, msgValidationFailed, vErr.Messages)
			return
		}
		httpkit.Error(c, http.StatusInternalServerError, "lead processing failed", nil)
		return
	}

	status := http.StatusOK
	if outcome.Kind == domain.OutcomeAssigned {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, transport.ToSubmitResponse(outcome))
}

// CheckDuplicate reports whether contact info already matches a stored
// lead, so intake forms can warn before submitting.
// GET /api/v1/intake/leads/check-duplicate
func (h *Handler) CheckDuplicate(c *gin.Context) {
	email := c.Query("email")
	phone := c.Query("phone")
	if email == "" && phone == "" {
		httpkit.Error(c, http.StatusBadRequest, "email or phone parameter required", nil)
		return
	}

	lead, err := h.svc.CheckDuplicate(c.Request.Context(), email, phone)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToDuplicateCheckResponse(lead))
}

// ListLeads returns stored leads, newest first.
// GET /api/v1/admin/intake/leads
func (h *Handler) ListLeads(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	leads, err := h.svc.ListLeads(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponses(leads))
}

// GetLead returns one stored lead.
// GET /api/v1/admin/intake/leads/:id
func (h *Handler) GetLead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.svc.GetLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

// LeadActivity returns the audit trail for one lead.
// GET /api/v1/admin/intake/leads/:id/activity
func (h *Handler) LeadActivity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	items, err := h.svc.LeadActivity(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToActivityResponses(items))
}

// ListWaiting returns the waiting queue, oldest first.
// GET /api/v1/admin/intake/queue
func (h *Handler) ListWaiting(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	waiting, total, err := h.svc.ListWaiting(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"items": transport.ToWaitingLeadResponses(waiting),
		"total": total,
	})
}

// DrainQueue replays queued leads now instead of waiting for the
// background worker.
// POST /api/v1/admin/intake/queue/drain
func (h *Handler) DrainQueue(c *gin.Context) {
	res, err := h.svc.DrainWaitingQueue(c.Request.Context())
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "queue drain failed", res)
		return
	}

	httpkit.OK(c, res)
}
