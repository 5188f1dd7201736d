package middleware

import (
	"strings"

	"vidhub-go/internal/api/response"
	"vidhub-go/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUserID = "currentUserID"
	ContextKeyUser   = "currentUser"
)

// AuthUser 请求上下文中的登录用户
type AuthUser struct {
	UserID  int64
	Email   string
	IsAdmin bool
}

func setAuthUser(c *gin.Context, claims *utils.Claims) {
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyUser, &AuthUser{
		UserID:  claims.UserID,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	})
}

// AuthRequired JWT 认证中间件，要求请求必须携带有效 Token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "缺少认证令牌")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, "无效或过期的认证令牌")
			c.Abort()
			return
		}

		setAuthUser(c, claims)
		c.Next()
	}
}

// OptionalAuth 可选认证：带有效 Token 时写入用户信息，否则按匿名处理，不会中断请求
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if claims, err := utils.ParseToken(token); err == nil {
				setAuthUser(c, claims)
			}
		}
		c.Next()
	}
}

// GetCurrentUserID 从 Gin Context 中获取当前登录用户 ID
func GetCurrentUserID(c *gin.Context) (int64, bool) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok
}

// GetAuthUser 获取当前登录用户，匿名请求返回 nil
func GetAuthUser(c *gin.Context) *AuthUser {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	u, _ := val.(*AuthUser)
	return u
}

// AdminChecker 从存储中确认管理员身份
type AdminChecker func(c *gin.Context, userID int64) (bool, error)

// AdminRequired 管理员权限中间件（必须在 AuthRequired 之后使用）
// token 中的 isAdmin 可能已过期，这里总是以存储为准
func AdminRequired(isAdmin AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			response.Unauthorized(c, "缺少认证信息")
			c.Abort()
			return
		}

		admin, err := isAdmin(c, userID)
		if err != nil {
			response.ServiceUnavailable(c, "暂时无法校验权限")
			c.Abort()
			return
		}
		if !admin {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}

		if u := GetAuthUser(c); u != nil {
			u.IsAdmin = true
		}
		c.Next()
	}
}

// extractToken 从 Authorization 头中提取 Bearer Token
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
