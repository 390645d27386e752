package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskflow/internal/repository"
	"taskflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

func newAuthEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(nil, "test-secret", time.Hour)
	accounts := service.NewAccountService(repository.NewMemoryUserRepository(), tokens, nil)

	r := gin.New()
	NewAuthHandler(accounts, false).Register(r.Group("/api/v1"))
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_StatusCodes(t *testing.T) {
	r := newAuthEngine()
	const jane = `{"email":"jane@example.com","username":"jane","password":"pw","confirmedPassword":"pw"}`

	tests := []struct {
		name, path, body string
		want             int
	}{
		{"login before register", "/api/v1/login", `{"email":"jane@example.com","password":"pw"}`, http.StatusUnauthorized},
		{"register", "/api/v1/register", jane, http.StatusCreated},
		{"register again", "/api/v1/register", jane, http.StatusConflict},
		{"confirmation mismatch", "/api/v1/register", `{"email":"x@example.com","username":"x","password":"pw","confirmed_password":"other"}`, http.StatusUnprocessableEntity},
		{"missing fields", "/api/v1/register", `{"email":"y@example.com"}`, http.StatusBadRequest},
		{"login", "/api/v1/login", `{"email":"jane@example.com","password":"pw"}`, http.StatusOK},
		{"login by username", "/api/v1/login", `{"username":"jane","password":"pw"}`, http.StatusOK},
		{"wrong password", "/api/v1/login", `{"email":"jane@example.com","password":"nope"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		w := post(r, tt.path, tt.body)
		if w.Code != tt.want {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, w.Code, tt.want, w.Body.String())
		}
	}
}

func TestAuthHandler_LoginSetsCookiesAndToken(t *testing.T) {
	r := newAuthEngine()
	post(r, "/api/v1/register", `{"email":"jane@example.com","username":"jane","password":"pw"}`)

	w := post(r, "/api/v1/login", `{"email":"jane@example.com","password":"pw"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if gjson.Get(w.Body.String(), "access_token").String() == "" {
		t.Errorf("body = %s", w.Body.String())
	}

	cookies := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c
	}
	if c := cookies["access_token"]; c == nil || !c.HttpOnly {
		t.Errorf("access_token cookie = %+v", c)
	}
	if c := cookies["XSRF-TOKEN"]; c == nil || c.HttpOnly || c.Value == "" {
		t.Errorf("XSRF-TOKEN cookie = %+v", c)
	}
}

func TestAuthHandler_ErrorBodyCarriesMessage(t *testing.T) {
	r := newAuthEngine()
	w := post(r, "/api/v1/login", `{"email":"ghost@example.com","password":"pw"}`)
	if msg := gjson.Get(w.Body.String(), "message").String(); msg != "invalid username or password" {
		t.Errorf("message = %q", msg)
	}
}
