// Package session implements the server-side session the storefront
// hangs its cart on: a per-request bag of JSON-encoded values loaded
// from a Store at the start of the request and written back at the end
// if anything changed.
//
// A Session is not safe for concurrent use. Each request gets its own
// instance; two concurrent requests for the same session id each load
// an independent snapshot and the last writer wins at the Store.
package session

import (
	"context"
	"encoding/json"
	"fmt"
)

// Session is one visitor's session. Values are kept JSON-encoded so the
// bag round-trips through any Store without the Store knowing the
// value types.
type Session struct {
	id     string
	values map[string]json.RawMessage
	dirty  bool
}

// New returns an empty session with the given id.
func New(id string) *Session {
	return &Session{
		id:     id,
		values: make(map[string]json.RawMessage),
	}
}

// Restore rebuilds a session from previously persisted values. Stores
// use it when loading; the restored session starts clean.
func Restore(id string, values map[string]json.RawMessage) *Session {
	if values == nil {
		values = make(map[string]json.RawMessage)
	}
	return &Session{id: id, values: values}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Get decodes the value stored under key into v. It reports whether
// the key was present; a decode failure of a present value is an error.
func (s *Session) Get(key string, v any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("session: decode %q: %w", key, err)
	}
	return true, nil
}

// Set stores v under key and marks the session dirty.
func (s *Session) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: encode %q: %w", key, err)
	}
	s.values[key] = raw
	s.dirty = true
	return nil
}

// Delete removes key and marks the session dirty. Deleting an absent
// key is a no-op.
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.dirty = true
}

// MarkDirty forces a write-back even if no value changed.
func (s *Session) MarkDirty() { s.dirty = true }

// Dirty reports whether the session has unpersisted changes.
func (s *Session) Dirty() bool { return s.dirty }

// Values returns the raw encoded values for persistence.
func (s *Session) Values() map[string]json.RawMessage { return s.values }

// Store persists sessions by id. Load on an unknown id returns a fresh
// empty session, not an error.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}
