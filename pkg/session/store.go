// Package session keeps the locally persisted session credential and tells
// observers when it changes.
package session

import (
	"context"
	"errors"
	"sync"

	"taskflow/pkg/logger"
)

const (
	// MarkerKey holds the session marker.
	MarkerKey = "session"
	// MarkerValue is written whenever an authentication step succeeds.
	MarkerValue = "ok"
	// PrimaryTokenKey is where new tokens are written.
	PrimaryTokenKey = "token"
)

// TokenKeys lists the keys checked for a bearer token, highest priority first.
var TokenKeys = []string{PrimaryTokenKey, "accessToken", "auth_token", "jwt"}

// ErrNotFound is returned by backends for missing keys.
var ErrNotFound = errors.New("session: key not found")

// Event describes one change to the store.
type Event struct {
	Key     string
	Value   string
	Deleted bool
	// Remote is set for changes written by another process.
	Remote bool
}

// Backend persists string values.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Watcher is implemented by backends shared between processes. The channel
// carries changes made by other writers and is closed when ctx ends.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// Credential is the locally persisted result of an authentication.
type Credential struct {
	// Token is empty when the backend relies on cookie sessions.
	Token string
	// Established is set whenever any authentication step returned 2xx.
	Established bool
}

// Store is the session store.
type Store struct {
	backend Backend

	mu     sync.RWMutex
	subs   map[int]func(Event)
	nextID int
}

// NewStore creates a store over backend.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		subs:    make(map[int]func(Event)),
	}
}

// Get returns the value of key, or "" when it is missing.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// Set writes key and notifies subscribers.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		return err
	}
	s.notify(Event{Key: key, Value: value})
	return nil
}

// Delete removes keys and notifies subscribers once per key.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		return err
	}
	for _, key := range keys {
		s.notify(Event{Key: key, Deleted: true})
	}
	return nil
}

// Token returns the first non-empty value among TokenKeys. Read errors are
// logged and treated as "no token".
func (s *Store) Token(ctx context.Context) string {
	for _, key := range TokenKeys {
		v, err := s.Get(ctx, key)
		if err != nil {
			logger.Warn("session: read %s failed: %v", key, err)
			continue
		}
		if v != "" {
			return v
		}
	}
	return ""
}

// Credential reads the current credential.
func (s *Store) Credential(ctx context.Context) (Credential, error) {
	marker, err := s.Get(ctx, MarkerKey)
	if err != nil {
		return Credential{}, err
	}
	return Credential{
		Token:       s.Token(ctx),
		Established: marker == MarkerValue,
	}, nil
}

// Save persists cred. The token is written only when present and the marker
// only when the credential is established.
func (s *Store) Save(ctx context.Context, cred Credential) error {
	if cred.Token != "" {
		if err := s.Set(ctx, PrimaryTokenKey, cred.Token); err != nil {
			return err
		}
	}
	if cred.Established {
		if err := s.Set(ctx, MarkerKey, MarkerValue); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every token key and the marker.
func (s *Store) Clear(ctx context.Context) error {
	keys := append([]string{MarkerKey}, TokenKeys...)
	return s.Delete(ctx, keys...)
}

// Subscribe registers fn for change events and returns its cancel func.
// fn runs synchronously on the writing goroutine.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Watch forwards remote changes to subscribers until ctx ends. It returns
// immediately when the backend is process-local.
func (s *Store) Watch(ctx context.Context) error {
	w, ok := s.backend.(Watcher)
	if !ok {
		return nil
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	for ev := range events {
		ev.Remote = true
		s.notify(ev)
	}
	return ctx.Err()
}

func (s *Store) notify(ev Event) {
	s.mu.RLock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}
