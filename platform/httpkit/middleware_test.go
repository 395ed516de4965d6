package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadintake_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type testJWTConfig struct {
	secret string
}

func (c testJWTConfig) GetJWTAccessSecret() string { return c.secret }

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func accessClaims(sub string, roles []string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   sub,
		"type":  "access",
		"roles": roles,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
}

func TestAuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "test-secret"
	operatorID := uuid.New()

	var gotID uuid.UUID
	var gotRoles []string

	engine := gin.New()
	engine.GET("/probe", AuthRequired(testJWTConfig{secret: secret}), func(c *gin.Context) {
		gotID, _ = OperatorID(c)
		gotRoles = OperatorRoles(c)
		c.Status(http.StatusNoContent)
	})

	do := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, secret, accessClaims(operatorID.String(), []string{"operator", "admin"}))

		w := do("Bearer " + token)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
		}
		if gotID != operatorID {
			t.Errorf("operator id = %s, want %s", gotID, operatorID)
		}
		if len(gotRoles) != 2 || gotRoles[0] != "operator" || gotRoles[1] != "admin" {
			t.Errorf("roles = %v, want [operator admin]", gotRoles)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		if w := do(""); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("not a bearer token", func(t *testing.T) {
		if w := do("Basic dXNlcjpwYXNz"); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if w := do("Bearer not-a-jwt"); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other-secret", accessClaims(operatorID.String(), nil))
		if w := do("Bearer " + token); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("non-access token type", func(t *testing.T) {
		claims := accessClaims(operatorID.String(), nil)
		claims["type"] = "refresh"
		token := signToken(t, secret, claims)
		if w := do("Bearer " + token); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		claims := accessClaims(operatorID.String(), nil)
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		token := signToken(t, secret, claims)
		if w := do("Bearer " + token); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("non-uuid subject", func(t *testing.T) {
		token := signToken(t, secret, accessClaims("42", nil))
		if w := do("Bearer " + token); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	probe := func(roles []string, rolesSet bool) int {
		engine := gin.New()
		engine.GET("/probe",
			func(c *gin.Context) {
				if rolesSet {
					c.Set(ContextRolesKey, roles)
				}
			},
			RequireRole("operator"),
			func(c *gin.Context) { c.Status(http.StatusNoContent) },
		)

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
		return w.Code
	}

	if code := probe([]string{"viewer", "operator"}, true); code != http.StatusNoContent {
		t.Errorf("role present: got %d, want 204", code)
	}
	if code := probe([]string{"viewer"}, true); code != http.StatusForbidden {
		t.Errorf("role absent: got %d, want 403", code)
	}
	if code := probe(nil, false); code != http.StatusForbidden {
		t.Errorf("roles never set: got %d, want 403", code)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewIPRateLimiter(rate.Every(time.Minute), 1, logger.New("development"))
	engine := gin.New()
	engine.GET("/probe", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w.Code
	}

	if code := do("10.0.0.1:1234"); code != http.StatusNoContent {
		t.Fatalf("first request: got %d, want 204", code)
	}
	if code := do("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("second request from same ip: got %d, want 429", code)
	}
	if code := do("10.0.0.2:1234"); code != http.StatusNoContent {
		t.Fatalf("request from other ip: got %d, want its own bucket", code)
	}
}
