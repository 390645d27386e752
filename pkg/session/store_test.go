package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestToken_PriorityOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())

	store.Set(ctx, "jwt", "from-jwt")
	store.Set(ctx, "accessToken", "from-access-token")
	if got := store.Token(ctx); got != "from-access-token" {
		t.Errorf("Token = %q, want accessToken value", got)
	}

	store.Set(ctx, "token", "from-token")
	if got := store.Token(ctx); got != "from-token" {
		t.Errorf("Token = %q, want token value", got)
	}

	store.Set(ctx, "token", "")
	if got := store.Token(ctx); got != "from-access-token" {
		t.Errorf("empty token key should be skipped, got %q", got)
	}
}

func TestSaveAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())

	if err := store.Save(ctx, Credential{Established: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cred, _ := store.Credential(ctx)
	if !cred.Established || cred.Token != "" {
		t.Errorf("cookie session credential = %+v", cred)
	}

	store.Save(ctx, Credential{Token: "t1", Established: true})
	store.Set(ctx, "auth_token", "legacy")
	cred, _ = store.Credential(ctx)
	if cred.Token != "t1" {
		t.Errorf("token = %q", cred.Token)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cred, _ = store.Credential(ctx)
	if cred.Established || cred.Token != "" {
		t.Errorf("after clear = %+v", cred)
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend())

	var events []Event
	unsubscribe := store.Subscribe(func(ev Event) { events = append(events, ev) })

	store.Save(ctx, Credential{Token: "t1", Established: true})
	store.Delete(ctx, "token")
	unsubscribe()
	store.Set(ctx, "token", "ignored")

	want := []Event{
		{Key: "token", Value: "t1"},
		{Key: MarkerKey, Value: MarkerValue},
		{Key: "token", Deleted: true},
	}
	if len(events) != len(want) {
		t.Fatalf("events = %+v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestWatch_LocalBackendReturnsImmediately(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	if err := store.Watch(context.Background()); err != nil {
		t.Errorf("Watch: %v", err)
	}
}

func TestFileBackend_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	first := NewStore(NewFileBackend(path))
	if err := first.Save(ctx, Credential{Token: "persisted", Established: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := NewStore(NewFileBackend(path))
	cred, err := second.Credential(ctx)
	if err != nil {
		t.Fatalf("Credential: %v", err)
	}
	if cred.Token != "persisted" || !cred.Established {
		t.Errorf("credential = %+v", cred)
	}

	second.Clear(ctx)
	if v, _ := first.Get(ctx, "token"); v != "" {
		t.Errorf("token after clear = %q", v)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, ok := TokenExpiry(token)
	if !ok || !got.Equal(exp) {
		t.Errorf("TokenExpiry = %v, %v", got, ok)
	}
	if (Credential{Token: token}).Expired(time.Now()) {
		t.Error("fresh token reported expired")
	}
	if !(Credential{Token: token}).Expired(exp.Add(time.Second)) {
		t.Error("token past exp not reported expired")
	}
	if _, ok := TokenExpiry("opaque-token"); ok {
		t.Error("opaque token should have no expiry")
	}
}
