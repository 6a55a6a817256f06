// Package session persists per-request authentication state, partitioned by
// scope, in a pluggable storage backend.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage"
)

// Store is the global session store instance.
var Store *session.Store

// ScopeData is the authentication state of a single scope within a session.
type ScopeData struct {
	// Key is the serialized resource key ("" when unauthenticated).
	Key string `json:"key,omitempty"`
	// Data is the scope-namespaced session substructure. Scopes cannot
	// collide here: each scope owns its own map.
	Data map[string]any `json:"data,omitempty"`
}

// Data represents the session data structure.
type Data struct {
	// Scopes maps a scope name to its authentication state.
	Scopes map[string]*ScopeData `json:"scopes,omitempty"`
	// Values is a flat key/value area for non-scope state, e.g. the
	// "<scope>.return_to" stored locations and OIDC state tokens.
	Values map[string]string `json:"values,omitempty"`
}

// Scope returns the state for the given scope name, creating it on first use.
func (s *Data) Scope(name string) *ScopeData {
	if s.Scopes == nil {
		s.Scopes = make(map[string]*ScopeData)
	}

	sd, ok := s.Scopes[name]
	if !ok {
		sd = &ScopeData{}
		s.Scopes[name] = sd
	}

	return sd
}

// Value reads a flat session value.
func (s *Data) Value(key string) (string, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// SetValue writes a flat session value.
func (s *Data) SetValue(key, value string) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}

	s.Values[key] = value
}

// DeleteValue removes a flat session value.
func (s *Data) DeleteValue(key string) {
	delete(s.Values, key)
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	return json.Unmarshal(byteData, s)
}

// Init initializes the session store with the provided storage backend.
// A nil backend falls back to the fiber session middleware's in-memory store.
func Init(storage storage.Storage) {
	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
