// Package router assembles the Gin engine from the application modules.
package router

import (
	"net/http"
	"time"

	apphttp "leadintake_backend/internal/http"
	"leadintake_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// New builds the HTTP engine: global middleware, health and metrics
// endpoints, the public intake group, and the admin group, then lets
// every module register its routes.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app)))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/readyz", func(c *gin.Context) {
		if err := app.Health.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1")

	intakeLimiter := httpkit.NewIPRateLimiter(
		rate.Limit(app.Config.GetIntakeRateLimit()),
		app.Config.GetIntakeRateBurst(),
		app.Logger,
	)
	intake := v1.Group("/intake", intakeLimiter.RateLimit(), app.IntakeAuth)

	admin := v1.Group("/admin", httpkit.AuthRequired(app.Config), httpkit.RequireRole("operator"))

	ctx := &apphttp.RouterContext{
		Engine: engine,
		V1:     v1,
		Intake: intake,
		Admin:  admin,
		Config: app.Config,
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		app.Logger.Info("registered module routes", "module", module.Name())
	}

	return engine
}

func corsConfig(app *apphttp.App) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Intake-API-Key"},
		AllowCredentials: app.Config.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}

	if app.Config.GetCORSAllowAll() {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = app.Config.GetCORSOrigins()
	}

	return cfg
}
