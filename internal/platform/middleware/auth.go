package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit-platform/service-booking/internal/platform/auth"
	"github.com/shareit-platform/service-booking/internal/platform/response"
)

// SharerUserIDHeader carries the caller id when the gateway has already
// authenticated the request.
const SharerUserIDHeader = "X-Sharer-User-Id"

const (
	ctxUserID   = "user_id"
	ctxUserRole = "user_role"
)

// AuthMiddleware resolves the caller identity. A Bearer token always wins;
// the X-Sharer-User-Id header is honoured only when allowHeaderIdentity is set.
func AuthMiddleware(jwtManager *auth.JWTManager, allowHeaderIdentity bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || jwtManager == nil {
				response.Unauthorized(c, "invalid authorization header")
				return
			}
			claims, err := jwtManager.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				response.Unauthorized(c, "invalid or expired token")
				return
			}
			userID, _ := claims.UserID()
			c.Set(ctxUserID, userID)
			c.Set(ctxUserRole, claims.Role)
			c.Next()
			return
		}

		if allowHeaderIdentity {
			if raw := c.GetHeader(SharerUserIDHeader); raw != "" {
				userID, err := uuid.Parse(raw)
				if err != nil {
					response.Unauthorized(c, "invalid "+SharerUserIDHeader+" header")
					return
				}
				c.Set(ctxUserID, userID)
				c.Set(ctxUserRole, auth.RoleUser)
				c.Next()
				return
			}
		}

		response.Unauthorized(c, "missing caller identity")
	}
}

// RequireRole rejects callers whose role does not match.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r, ok := GetUserRole(c); !ok || r != role {
			response.Forbidden(c, "insufficient role")
			return
		}
		c.Next()
	}
}

// GetUserID returns the caller id set by AuthMiddleware.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserRole returns the caller role set by AuthMiddleware.
func GetUserRole(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
