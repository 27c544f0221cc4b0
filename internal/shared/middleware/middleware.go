package middleware

import (
	"net/http"
	"strings"
	"time"

	"gymflow/internal/shared/config"
	"gymflow/internal/shared/utils/response"
	"gymflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Context keys set by JWTAuthWithConfig.
const (
	ContextUserID         = "user_id"
	ContextUserRole       = "user_role"
	ContextOrganizationID = "organization_id"
)

// JWTAuthWithConfig validates an HS256 bearer access token and stores its claims on the context.
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondError(c, http.StatusUnauthorized, "Authorization header is required", nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondError(c, http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			response.RespondError(c, http.StatusUnauthorized, "invalid or expired token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondError(c, http.StatusUnauthorized, "invalid token claims", nil)
			c.Abort()
			return
		}
		if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
			response.RespondError(c, http.StatusUnauthorized, "invalid token type", nil)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims["user_id"])
		c.Set(ContextUserRole, claims["role"])
		if orgClaim, ok := claims["organization_id"].(string); ok {
			if orgID, err := uuid.Parse(orgClaim); err == nil {
				c.Set(ContextOrganizationID, orgID)
			}
		}

		c.Next()
	}
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextUserRole)
		if !exists {
			response.RespondError(c, http.StatusUnauthorized, "user role not found in context", nil)
			c.Abort()
			return
		}

		role, _ := userRole.(string)
		for _, required := range requiredRoles {
			if role == required {
				c.Next()
				return
			}
		}

		response.RespondError(c, http.StatusForbidden, "Insufficient permissions", nil)
		c.Abort()
	}
}

// OrganizationFromContext returns the organization bound to the caller's token, if any.
func OrganizationFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(ContextOrganizationID)
	if !exists {
		return uuid.Nil, false
	}
	orgID, ok := value.(uuid.UUID)
	return orgID, ok
}

// RequestLogger logs every request once it has been handled.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		reqLog := log
		if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
			reqLog = log.WithRequestID(requestID)
		}
		reqLog.LogHTTPRequest(c, time.Since(start))
	}
}
