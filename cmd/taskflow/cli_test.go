package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"taskflow/pkg/client"
)

func TestParseFilters(t *testing.T) {
	got, err := parseFilters([]string{"board_id=b1", "status=done"})
	if err != nil {
		t.Fatalf("parseFilters: %v", err)
	}
	if got.Get("board_id") != "b1" || got.Get("status") != "done" {
		t.Errorf("filters = %v", got)
	}

	if _, err := parseFilters([]string{"status"}); err == nil {
		t.Error("expected error for missing value")
	}
	if _, err := parseFilters([]string{"=x"}); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestRenderPage(t *testing.T) {
	raw := `{
	  "_embedded": {"cards": [
	    {"id": "c1", "title": "Write docs", "status": "todo", "board_id": "b1", "_links": {"self": {"href": "/api/v1/cards/c1"}}}
	  ]},
	  "page": {"size": 20, "number": 0, "totalElements": 1, "totalPages": 1}
	}`
	var buf bytes.Buffer
	renderPage(&buf, "cards", client.ParseCollection([]byte(raw), "cards"))

	out := buf.String()
	for _, want := range []string{"TITLE", "Write docs", "todo", "page 1 of 1, 1 cards in total"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// 使用临时会话文件跑一遍 login → whoami → logout
func TestCommands_LoginWhoamiLogout(t *testing.T) {
	var loggedOut bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/login":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "s3cret" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "invalid username or password"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "token_type": "Bearer"})
		case "/me":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "u1", "username": "jane", "email": "jane@example.com"})
		case "/logout":
			loggedOut = true
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	t.Setenv("TASKFLOW_API_BASE_URL", srv.URL)
	t.Setenv("TASKFLOW_SESSION_FILE", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("TASKFLOW_REDIS_URL", "")

	run := func(args ...string) (string, error) {
		root := newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetIn(strings.NewReader(""))
		root.SetArgs(args)
		err := root.Execute()
		return out.String(), err
	}

	if _, err := run("login", "-e", "jane@example.com", "-p", "wrong"); err == nil || err.Error() != client.MsgInvalidCredentials {
		t.Errorf("bad password err = %v", err)
	}
	if out, err := run("login", "-e", "jane@example.com", "-p", "s3cret"); err != nil || !strings.Contains(out, "Signed in") {
		t.Fatalf("login: %v\n%s", err, out)
	}
	out, err := run("whoami")
	if err != nil || !strings.Contains(out, "jane@example.com") {
		t.Errorf("whoami: %v\n%s", err, out)
	}
	if _, err := run("logout"); err != nil || !loggedOut {
		t.Errorf("logout: %v, server saw logout = %v", err, loggedOut)
	}
	if _, err := run("whoami"); err == nil {
		t.Error("whoami after logout should fail")
	}
}
