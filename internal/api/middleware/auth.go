package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

const (
	ContextUserID  = "user_id"
	ContextIsStaff = "is_staff"
)

// TokenParser 校验 Bearer token
type TokenParser interface {
	ParseToken(token string) (*service.Claims, error)
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// RequireAuth rejects requests without a valid token.
func RequireAuth(tp TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		claims, err := tp.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextIsStaff, claims.IsStaff)
		c.Next()
	}
}

// OptionalAuth 有合法 token 时写入 user_id，否则按匿名处理
func OptionalAuth(tp TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearer(c); token != "" {
			if claims, err := tp.ParseToken(token); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextIsStaff, claims.IsStaff)
			}
		}
		c.Next()
	}
}

// StaffOnly must run after RequireAuth.
func StaffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(ContextIsStaff) {
			c.Next()
			return
		}
		response.Forbidden(c, "staff only")
		c.Abort()
	}
}

// UserID returns the authenticated user, if any.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
