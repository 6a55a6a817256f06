package session

import (
	"sync"
	"testing"
	"time"

	"github.com/gofiber/storage"
)

// testStorage is a minimal in-memory implementation of storage.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

func TestDataRoundTrip(t *testing.T) {
	Init(&testStorage{data: make(map[string][]byte)})

	sessionID, err := GenerateSessionID()
	if err != nil {
		t.Fatalf("GenerateSessionID() error = %v", err)
	}

	data := &Data{}
	data.Scope("user").Key = "42"
	data.Scope("user").Data = map[string]any{"visits": 3}
	data.SetValue("user.return_to", "/dashboard?tab=zones")

	if err := data.Write(sessionID, time.Minute); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var got Data
	if err := got.Read(sessionID); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.Scope("user").Key != "42" {
		t.Errorf("user scope key = %q, want %q", got.Scope("user").Key, "42")
	}

	// JSON numbers decode as float64
	if v, ok := got.Scope("user").Data["visits"].(float64); !ok || v != 3 {
		t.Errorf("user scope data visits = %v, want 3", got.Scope("user").Data["visits"])
	}

	if v, ok := got.Value("user.return_to"); !ok || v != "/dashboard?tab=zones" {
		t.Errorf("return_to = %q, want %q", v, "/dashboard?tab=zones")
	}
}

func TestDataScopeIsolation(t *testing.T) {
	data := &Data{}
	data.Scope("user").Data = map[string]any{"shared": "from-user"}

	if _, ok := data.Scope("admin").Data["shared"]; ok {
		t.Error("admin scope must not see user scope data")
	}

	data.Scope("admin").Key = "1"
	if data.Scope("user").Key != "" {
		t.Error("setting the admin key must not touch the user key")
	}
}

func TestDataValues(t *testing.T) {
	data := &Data{}

	if _, ok := data.Value("missing"); ok {
		t.Error("Value() on empty data should report absence")
	}

	data.SetValue("k", "v")

	if v, ok := data.Value("k"); !ok || v != "v" {
		t.Errorf("Value(k) = %q, %v; want v, true", v, ok)
	}

	data.DeleteValue("k")

	if _, ok := data.Value("k"); ok {
		t.Error("Value() after delete should report absence")
	}
}

func TestGenerateSessionID(t *testing.T) {
	a, err := GenerateSessionID()
	if err != nil {
		t.Fatalf("GenerateSessionID() error = %v", err)
	}

	b, err := GenerateSessionID()
	if err != nil {
		t.Fatalf("GenerateSessionID() error = %v", err)
	}

	if len(a) != 64 {
		t.Errorf("session ID length = %d, want 64 hex chars", len(a))
	}

	if a == b {
		t.Error("two session IDs must not collide")
	}
}
