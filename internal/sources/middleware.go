package sources

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"leadintake_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// HeaderAPIKey carries the intake API key on submission requests.
const HeaderAPIKey = "X-Intake-API-Key"

// ContextSourceKey is the gin context key holding the resolved source name.
const ContextSourceKey = "intakeSource"

// APIKeyAuthMiddleware validates the X-Intake-API-Key header and stamps
// the key's name into the request as the lead source.
func APIKeyAuthMiddleware(repo *Repository, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderAPIKey)
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		key, err := repo.GetByHash(c.Request.Context(), HashKey(apiKey))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		// Domain validation (if allowed_domains is configured)
		if len(key.AllowedDomains) > 0 {
			origin := c.GetHeader("Origin")
			if origin == "" {
				origin = c.GetHeader("Referer")
			}
			if !isDomainAllowed(origin, key.AllowedDomains) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "domain not allowed"})
				return
			}
		}

		if err := repo.TouchLastUsed(c.Request.Context(), key.ID); err != nil {
			log.Warn("failed to update API key last_used_at", "error", err, "key_id", key.ID)
		}

		// Make the source available to handlers and to log lines.
		c.Set(ContextSourceKey, key.Name)
		ctx := context.WithValue(c.Request.Context(), logger.SourceKey, key.Name)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SourceFromContext returns the source name stamped by the middleware.
func SourceFromContext(c *gin.Context) string {
	return c.GetString(ContextSourceKey)
}

// isDomainAllowed checks if the origin matches any of the allowed domains.
// Supports exact match and wildcard subdomains (e.g., "*.example.com").
func isDomainAllowed(origin string, allowedDomains []string) bool {
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())

	for _, domain := range allowedDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "*" {
			return true
		}
		if strings.HasPrefix(domain, "*.") {
			// Wildcard subdomain match
			suffix := domain[1:] // ".example.com"
			if strings.HasSuffix(host, suffix) || host == domain[2:] {
				return true
			}
		} else {
			if host == domain {
				return true
			}
		}
	}
	return false
}
