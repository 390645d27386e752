package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin 仅允许配置中的管理员用户名访问，必须位于 HandleAuth 之后
func RequireAdmin(usernames []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(usernames))
	for _, u := range usernames {
		allowed[u] = true
	}

	return func(c *gin.Context) {
		claims := GetUserFromContext(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		if !allowed[claims.Username] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin privileges required"})
			return
		}
		c.Next()
	}
}
