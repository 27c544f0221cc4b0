package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gymflow/internal/shared/config"
	"gymflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newEngine() (*gin.Engine, *uuid.UUID) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Enabled: true, Secret: testSecret}}

	var seen uuid.UUID
	engine := gin.New()
	engine.Use(JWTAuthWithConfig(cfg))
	engine.GET("/protected", func(c *gin.Context) {
		if orgID, ok := OrganizationFromContext(c); ok {
			seen = orgID
		}
		c.Status(http.StatusOK)
	})
	engine.GET("/staff", RequireRoles("staff", "admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine, &seen
}

func doRequest(engine *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	engine.ServeHTTP(w, req)
	return w
}

func TestJWTAuthAcceptsAccessToken(t *testing.T) {
	engine, seen := newEngine()
	orgID := uuid.New()

	token := signToken(t, jwt.MapClaims{
		"user_id":         uuid.NewString(),
		"role":            "staff",
		"organization_id": orgID.String(),
		"type":            "access",
		"exp":             time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	w := doRequest(engine, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, orgID, *seen)
}

func TestJWTAuthRejections(t *testing.T) {
	engine, _ := newEngine()

	refresh := signToken(t, jwt.MapClaims{"type": "refresh", "exp": time.Now().Add(time.Hour).Unix()}, testSecret)
	wrongKey := signToken(t, jwt.MapClaims{"type": "access", "exp": time.Now().Add(time.Hour).Unix()}, "other")
	expired := signToken(t, jwt.MapClaims{"type": "access", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"refresh token":  "Bearer " + refresh,
		"wrong key":      "Bearer " + wrongKey,
		"expired":        "Bearer " + expired,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(engine, "/protected", header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	engine, _ := newEngine()

	member := signToken(t, jwt.MapClaims{"type": "access", "role": "member", "exp": time.Now().Add(time.Hour).Unix()}, testSecret)
	admin := signToken(t, jwt.MapClaims{"type": "access", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()}, testSecret)

	assert.Equal(t, http.StatusForbidden, doRequest(engine, "/staff", "Bearer "+member).Code)
	assert.Equal(t, http.StatusOK, doRequest(engine, "/staff", "Bearer "+admin).Code)
}

func TestRequestLoggerTagsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(RequestLogger(logger.Wrap(zap.New(core))))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}
