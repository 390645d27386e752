package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"taskflow/internal/service"
	"taskflow/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	// BearerSchema Bearer认证方案
	BearerSchema = "Bearer "
	// ContextKeyUser 上下文中用户信息的键
	ContextKeyUser = "user"
	// ContextKeyToken 上下文中原始令牌的键
	ContextKeyToken = "token"
	// ContextKeyCookieAuth 令牌是否来自 Cookie
	ContextKeyCookieAuth = "cookie_auth"
	// CookieAccessToken Cookie中访问令牌的键
	CookieAccessToken = "access_token"
)

// AuthMiddleware 认证中间件
type AuthMiddleware struct {
	tokenService service.TokenService
}

// NewAuthMiddleware 创建认证中间件实例
func NewAuthMiddleware(tokenService service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// HandleAuth 处理认证
func (m *AuthMiddleware) HandleAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := ExtractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		claims, err := m.tokenService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			logger.Debug("Token validation failed: %v", err)
			switch {
			case errors.Is(err, service.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			case errors.Is(err, service.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			case errors.Is(err, service.ErrTokenRevoked):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to validate token"})
			}
			return
		}

		// 设置过期时间响应头
		if remaining := time.Until(claims.GetExpiresAt()); remaining > 0 {
			c.Header("X-Token-Expires-In", remaining.Truncate(time.Second).String())
		}

		c.Set(ContextKeyUser, claims)
		c.Set(ContextKeyToken, token)
		c.Set(ContextKeyCookieAuth, fromCookie)
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}

// ExtractToken 从请求中提取token，优先 Authorization 头
func ExtractToken(c *gin.Context) (token string, fromCookie bool) {
	auth := c.GetHeader("Authorization")
	if len(auth) > len(BearerSchema) && strings.EqualFold(auth[:len(BearerSchema)], BearerSchema) {
		return strings.TrimSpace(auth[len(BearerSchema):]), false
	}

	if cookie, err := c.Cookie(CookieAccessToken); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}
