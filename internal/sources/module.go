package sources

import (
	apphttp "leadintake_backend/internal/http"
	"leadintake_backend/platform/logger"
	"leadintake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the sources bounded context module implementing http.Module.
type Module struct {
	repo    *Repository
	handler *Handler
	log     *logger.Logger
}

// NewModule creates and initializes the sources module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)

	return &Module{
		repo:    repo,
		handler: NewHandler(repo, val, log),
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "sources"
}

// Middleware returns the API key auth middleware for the intake group.
func (m *Module) Middleware() gin.HandlerFunc {
	return APIKeyAuthMiddleware(m.repo, m.log)
}

// RegisterRoutes mounts the source key management endpoints on the admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/sources"))
}

// Ensure Module implements the http.Module interface.
var _ apphttp.Module = (*Module)(nil)
