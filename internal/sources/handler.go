package sources

import (
	"errors"
	"net/http"
	"time"

	"leadintake_backend/platform/httpkit"
	"leadintake_backend/platform/logger"
	"leadintake_backend/platform/sanitize"
	"leadintake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the operator API for source key management.
type Handler struct {
	repo *Repository
	val  *validator.Validator
	log  *logger.Logger
}

func NewHandler(repo *Repository, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{repo: repo, val: val, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.HandleListAPIKeys)
	rg.POST("", h.HandleCreateAPIKey)
	rg.DELETE("/:id", h.HandleRevokeAPIKey)
}

// CreateAPIKeyRequest is the request body for creating a new source key.
type CreateAPIKeyRequest struct {
	Name           string   `json:"name" validate:"required,min=1,max=100"`
	AllowedDomains []string `json:"allowedDomains" validate:"max=20,dive,max=200"`
}

// APIKeyResponse is returned when listing or creating API keys.
type APIKeyResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	KeyPrefix      string     `json:"keyPrefix"`
	AllowedDomains []string   `json:"allowedDomains"`
	IsActive       bool       `json:"isActive"`
	LastUsedAt     *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// CreateAPIKeyResponse includes the plaintext key (shown only once).
type CreateAPIKeyResponse struct {
	APIKeyResponse
	Key string `json:"key"` // plaintext, shown only once
}

func toAPIKeyResponse(key APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:             key.ID,
		Name:           key.Name,
		KeyPrefix:      key.KeyPrefix,
		AllowedDomains: key.AllowedDomains,
		IsActive:       key.IsActive,
		LastUsedAt:     key.LastUsedAt,
		CreatedAt:      key.CreatedAt,
	}
}

// HandleCreateAPIKey mints a new source key.
// POST /api/v1/admin/sources
func (h *Handler) HandleCreateAPIKey(c *gin.Context) {
	var req CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to generate API key", nil)
		return
	}

	domains := req.AllowedDomains
	if domains == nil {
		domains = []string{}
	}

	key, err := h.repo.Create(c.Request.Context(), sanitize.Text(req.Name), hash, prefix, domains)
	if httpkit.HandleError(c, err) {
		return
	}

	operatorID, _ := httpkit.OperatorID(c)
	h.log.Info("source api key created", "keyId", key.ID, "name", key.Name, "operator", operatorID)

	httpkit.Created(c, CreateAPIKeyResponse{
		APIKeyResponse: toAPIKeyResponse(key),
		Key:            plaintext,
	})
}

// HandleListAPIKeys lists all source keys.
// GET /api/v1/admin/sources
func (h *Handler) HandleListAPIKeys(c *gin.Context) {
	keys, err := h.repo.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]APIKeyResponse, len(keys))
	for i, k := range keys {
		result[i] = toAPIKeyResponse(k)
	}

	httpkit.OK(c, result)
}

// HandleRevokeAPIKey deactivates a source key.
// DELETE /api/v1/admin/sources/:id
func (h *Handler) HandleRevokeAPIKey(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	if err := h.repo.Revoke(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrAPIKeyNotFound) {
			httpkit.Error(c, http.StatusNotFound, "API key not found", nil)
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	operatorID, _ := httpkit.OperatorID(c)
	h.log.Info("source api key revoked", "keyId", id, "operator", operatorID)

	httpkit.OK(c, gin.H{"revoked": true})
}
