package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CSRFCookieName 双重提交 Cookie 的名称，客户端可读
	CSRFCookieName = "XSRF-TOKEN"
	// CSRFHeaderName 客户端回传令牌的请求头
	CSRFHeaderName = "X-XSRF-TOKEN"
)

// IssueCSRFCookie 签发新的 CSRF Cookie 并返回其值
func IssueCSRFCookie(c *gin.Context, maxAge int, secure bool) string {
	token := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	// 非 HttpOnly，客户端需要读取后回传
	c.SetCookie(CSRFCookieName, token, maxAge, "/", "", secure, false)
	return token
}

// CSRF 对 Cookie 认证的非安全方法请求做双重提交校验，必须位于 HandleAuth 之后
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) || !IsCookieAuth(c) {
			c.Next()
			return
		}

		cookie, err := c.Cookie(CSRFCookieName)
		header := c.GetHeader(CSRFHeaderName)
		if err != nil || cookie == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "csrf token mismatch"})
			return
		}
		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
