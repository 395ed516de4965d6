package handler

import (
	"net/http"
	"strconv"

	"leadintake_backend/internal/notification/inapp"
	"leadintake_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

// HTTPHandler exposes the agent notification feed to operators.
type HTTPHandler struct {
	svc *inapp.Service
}

func NewHTTPHandler(svc *inapp.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/unread-count", h.UnreadCount)
	rg.POST("/:id/read", h.MarkRead)
	rg.POST("/read-all", h.MarkAllRead)
}

func (h *HTTPHandler) agentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Query("agentId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "agentId query parameter is required", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *HTTPHandler) List(c *gin.Context) {
	agentID, ok := h.agentID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	items, err := h.svc.List(c.Request.Context(), agentID, page, pageSize)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"items":    items,
		"page":     page,
		"pageSize": pageSize,
	})
}

func (h *HTTPHandler) UnreadCount(c *gin.Context) {
	agentID, ok := h.agentID(c)
	if !ok {
		return
	}

	count, err := h.svc.CountUnread(c.Request.Context(), agentID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"count": count})
}

func (h *HTTPHandler) MarkRead(c *gin.Context) {
	agentID, ok := h.agentID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), agentID, id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"read": true})
}

func (h *HTTPHandler) MarkAllRead(c *gin.Context) {
	agentID, ok := h.agentID(c)
	if !ok {
		return
	}

	if err := h.svc.MarkAllRead(c.Request.Context(), agentID); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"read": true})
}
