package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const boardsPage = `{
  "_embedded": {
    "boards": [
      {"id": "b1", "name": "Roadmap", "_links": {"self": {"href": "/api/v1/boards/b1"}}},
      {"id": "b2", "name": "Bugs", "_links": {"self": {"href": "/api/v1/boards/b2"}}}
    ]
  },
  "_links": {"self": {"href": "/api/v1/boards?page=0&size=2"}},
  "page": {"size": 2, "number": 0, "totalElements": 5, "totalPages": 3}
}`

func TestParseCollection(t *testing.T) {
	page := ParseCollection([]byte(boardsPage), "boards")

	if len(page.Items) != 2 {
		t.Fatalf("items = %d", len(page.Items))
	}
	if page.Items[1].Self != "/api/v1/boards/b2" || page.Items[1].Get("name").String() != "Bugs" {
		t.Errorf("item = %+v", page.Items[1])
	}
	if page.TotalElements != 5 || page.TotalPages != 3 || page.Size != 2 {
		t.Errorf("page = %+v", page)
	}
}

func TestParseCollection_MissingEmbedded(t *testing.T) {
	page := ParseCollection([]byte(`{"page":{"totalElements":0,"totalPages":0}}`), "cards")
	if len(page.Items) != 0 || page.TotalElements != 0 {
		t.Errorf("page = %+v", page)
	}
}

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/boards" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "1" || q.Get("size") != "2" || q.Get("workspace_id") != "w1" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(boardsPage))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	page, err := c.List(context.Background(), "boards", 1, 2, map[string][]string{"workspace_id": {"w1"}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 2 {
		t.Errorf("items = %d", len(page.Items))
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&Error{Status: 0, Message: "dial tcp: connection refused"}, MsgNetwork},
		{&Error{Status: 400}, MsgInvalidCredentials},
		{&Error{Status: 401}, MsgInvalidCredentials},
		{&Error{Status: 404}, MsgNotFound},
		{&Error{Status: 429}, MsgRateLimited},
		{&Error{Status: 409, Message: "email already registered"}, "email already registered"},
		{&Error{Status: 403, Message: "Forbidden"}, MsgClientFallback},
		{&Error{Status: 502, Message: "bad gateway"}, MsgServer},
		{errors.New("boom"), MsgClientFallback},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
	if UserMessage(nil) != "" {
		t.Error("nil error should map to empty message")
	}
}
