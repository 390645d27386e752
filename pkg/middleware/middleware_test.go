package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskflow/internal/model"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newEngine 模拟认证中间件的结果后挂上 CSRF 校验
func newEngine(cookieAuth bool) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextKeyUser, &model.TokenClaims{UserID: "u1", Username: "jane"})
		c.Set(ContextKeyCookieAuth, cookieAuth)
	}, CSRF())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestCSRF(t *testing.T) {
	tests := []struct {
		name       string
		cookieAuth bool
		method     string
		cookie     string
		header     string
		want       int
	}{
		{"safe method", true, http.MethodGet, "", "", http.StatusOK},
		{"bearer auth skips check", false, http.MethodPost, "", "", http.StatusCreated},
		{"matching token", true, http.MethodPost, "t1", "t1", http.StatusCreated},
		{"missing header", true, http.MethodPost, "t1", "", http.StatusForbidden},
		{"mismatch", true, http.MethodPost, "t1", "t2", http.StatusForbidden},
		{"missing cookie", true, http.MethodPost, "", "t1", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			w := httptest.NewRecorder()
			newEngine(tt.cookieAuth).ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestMethodOverride(t *testing.T) {
	r := gin.New()
	r.PATCH("/cards/1", func(c *gin.Context) { c.String(http.StatusOK, "patched") })
	r.POST("/cards/1", func(c *gin.Context) { c.String(http.StatusOK, "posted") })
	h := MethodOverride(r)

	tests := []struct {
		method, override, want string
	}{
		{http.MethodPost, "PATCH", "patched"},
		{http.MethodPost, "patch", "patched"},
		{http.MethodPost, "", "posted"},
		{http.MethodPost, "CONNECT", "posted"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/cards/1", strings.NewReader("{}"))
		if tt.override != "" {
			req.Header.Set(MethodOverrideHeader, tt.override)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Body.String() != tt.want {
			t.Errorf("override %q: got %q, want %q", tt.override, w.Body.String(), tt.want)
		}
	}
}

func TestExtractToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "bearer abc")
	c.Request.AddCookie(&http.Cookie{Name: CookieAccessToken, Value: "from-cookie"})
	if token, fromCookie := ExtractToken(c); token != "abc" || fromCookie {
		t.Errorf("header: got %q, %v", token, fromCookie)
	}

	c.Request.Header.Del("Authorization")
	if token, fromCookie := ExtractToken(c); token != "from-cookie" || !fromCookie {
		t.Errorf("cookie: got %q, %v", token, fromCookie)
	}
}

func TestRequireAdmin(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextKeyUser, &model.TokenClaims{UserID: "u1", Username: c.GetHeader("X-User")})
	}, RequireAdmin([]string{"admin"}))
	r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	for user, want := range map[string]int{"admin": http.StatusOK, "jane": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("%s: status = %d, want %d", user, w.Code, want)
		}
	}
}
