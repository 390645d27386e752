package boot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskflow/internal/reconcile"
	"taskflow/pkg/client"
	"taskflow/pkg/config"
	"taskflow/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// newBackend 使用内存仓储启动完整的后端
func newBackend(t *testing.T) (*httptest.Server, *Repositories, *Services) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWT:      config.JWTConfig{Secret: "test-secret", AccessTokenExpire: 600},
		Activity: config.ActivityConfig{AdminUsers: []string{"jane_doe"}},
	}
	repos := InitMemoryRepositories()
	services := InitServices(cfg, repos, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go services.ActivityHub.Run(ctx)

	r := InitRouter(gin.New(), InitHandlers(services, repos, cfg), services, cfg)
	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)
	return srv, repos, services
}

func newClient(t *testing.T, srv *httptest.Server, tokens client.TokenSource) *client.Client {
	t.Helper()
	c, err := client.New(client.Options{BaseURL: srv.URL + "/api/v1", Tokens: tokens})
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return c
}

func TestReconcileAgainstBackend(t *testing.T) {
	srv, repos, _ := newBackend(t)
	ctx := context.Background()

	store := session.NewStore(session.NewMemoryBackend())
	c := newClient(t, srv, store)
	r := reconcile.New(c, store, reconcile.Config{})
	ext := reconcile.ExternalIdentity{ProviderUserID: "abc123", DisplayName: "Jane Doe"}

	first, err := r.Reconcile(ctx, reconcile.ProviderGoogle, ext)
	if err != nil || first.Token == "" || !first.Established {
		t.Fatalf("first Reconcile = %+v, %v", first, err)
	}
	second, err := r.Reconcile(ctx, reconcile.ProviderGoogle, ext)
	if err != nil || second.Token == "" {
		t.Fatalf("second Reconcile = %+v, %v", second, err)
	}
	if n, _ := repos.UserRepo.Count(ctx); n != 1 {
		t.Errorf("users = %d, want 1", n)
	}

	resp, err := c.Request(ctx, http.MethodGet, "/me")
	if err != nil {
		t.Fatalf("GET /me: %v", err)
	}
	var me struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	resp.Decode(&me)
	if me.Email != "abc123@google.local" || me.Username != "jane_doe" {
		t.Errorf("me = %+v", me)
	}
}

func TestResourcesOverHAL(t *testing.T) {
	srv, _, services := newBackend(t)
	ctx := context.Background()

	store := session.NewStore(session.NewMemoryBackend())
	c := newClient(t, srv, store)
	if _, err := reconcile.New(c, store, reconcile.Config{}).Login(ctx, "nobody@example.com", "x"); client.StatusOf(err) != http.StatusUnauthorized {
		t.Errorf("unknown login err = %v", err)
	}
	reg, err := c.Request(ctx, http.MethodPost, "/register", client.WithBody(map[string]string{
		"email": "jane@example.com", "username": "jane_doe", "password": "pw", "password_confirmation": "pw",
	}))
	if err != nil || reg.Status != http.StatusCreated {
		t.Fatalf("register: %v", err)
	}
	if _, err := reconcile.New(c, store, reconcile.Config{}).Login(ctx, "jane@example.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	ws, err := c.Request(ctx, http.MethodPost, "/workspaces", client.WithBody(map[string]string{"name": "Home"}))
	if err != nil || ws.Status != http.StatusCreated {
		t.Fatalf("create workspace: %v", err)
	}
	var created struct {
		ID    string `json:"id"`
		Links struct {
			Self struct {
				Href string `json:"href"`
			} `json:"self"`
		} `json:"_links"`
	}
	ws.Decode(&created)
	if created.Links.Self.Href != "/api/v1/workspaces/"+created.ID {
		t.Errorf("self = %q", created.Links.Self.Href)
	}

	for _, name := range []string{"Roadmap", "Bugs", "Ideas"} {
		if _, err := c.Request(ctx, http.MethodPost, "/boards", client.WithBody(map[string]string{"name": name, "workspace_id": created.ID})); err != nil {
			t.Fatalf("create board: %v", err)
		}
	}
	page, err := c.List(ctx, "boards", 1, 2, map[string][]string{"workspace_id": {created.ID}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 1 || page.TotalElements != 3 || page.TotalPages != 2 || page.Items[0].Get("name").String() != "Ideas" {
		t.Errorf("page = %+v", page)
	}

	// 通过方法覆盖发送 PATCH
	self := page.Items[0].Self
	patched, err := c.Request(ctx, http.MethodPatch, srv.URL+self, client.WithBody(map[string]string{"name": "Someday"}), client.WithMethodOverride())
	if err != nil {
		t.Fatalf("PATCH: %v", err)
	}
	var board struct{ Name string }
	patched.Decode(&board)
	if board.Name != "Someday" {
		t.Errorf("board = %+v", board)
	}

	if resp := c.Delete(ctx, srv.URL+self); resp.Status != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.Status)
	}
	if resp := c.Get(ctx, srv.URL+self); resp.Status != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.Status)
	}

	counts := services.ActivityHub.Counts()
	if counts["boards.create"] != 3 || counts["boards.update"] != 1 || counts["boards.delete"] != 1 {
		t.Errorf("activity counts = %v", counts)
	}
	stats := c.Get(ctx, "/admin/stats")
	if !stats.OK {
		t.Fatalf("admin stats: %v", stats.Err)
	}
	if got := gjson.GetBytes(stats.Raw, "data.totals.boards").Int(); got != 2 {
		t.Errorf("boards total = %d (%s)", got, stats.Raw)
	}
	if got := gjson.GetBytes(stats.Raw, "data.events.boards\\.create").Int(); got != 3 {
		t.Errorf("boards.create = %d", got)
	}
}

func TestCookieSessionRequiresCSRF(t *testing.T) {
	srv, _, _ := newBackend(t)
	ctx := context.Background()

	// 不带令牌来源，只依赖 Cookie
	c := newClient(t, srv, nil)
	resp := c.Post(ctx, "/register", client.WithBody(map[string]string{
		"email": "cookie@example.com", "username": "cookie", "password": "pw",
	}))
	if !resp.OK {
		t.Fatalf("register: %v", resp.Err)
	}

	if resp := c.Post(ctx, "/workspaces", client.WithBody(map[string]string{"name": "Via cookie"})); resp.Status != http.StatusCreated {
		t.Errorf("cookie create status = %d (%v)", resp.Status, resp.Err)
	}

	// 同样的 Cookie 但没有 CSRF 请求头
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/workspaces", nil)
	for _, ck := range c.Jar().Cookies(req.URL) {
		req.AddCookie(ck)
	}
	raw, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("raw request: %v", err)
	}
	raw.Body.Close()
	if raw.StatusCode != http.StatusForbidden {
		t.Errorf("status without csrf header = %d", raw.StatusCode)
	}

	if resp := c.Get(ctx, "/admin/stats"); resp.Status != http.StatusForbidden {
		t.Errorf("non-admin stats status = %d", resp.Status)
	}
}
