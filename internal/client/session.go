package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	KeyAuthToken    = "auth_token"
	KeyRefreshToken = "refresh_token"
)

// SessionStore persists the token pair between requests (and, for the file
// store, between processes).
type SessionStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

type MemorySession struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySession() *MemorySession {
	return &MemorySession{values: make(map[string]string)}
}

func (s *MemorySession) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemorySession) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemorySession) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// FileSession keeps the session as a flat JSON object. The file is re-read on
// every Get so separate CLI invocations share one login.
type FileSession struct {
	mu   sync.Mutex
	path string
}

func NewFileSession(path string) *FileSession {
	return &FileSession{path: path}
}

func (s *FileSession) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return values, nil
}

func (s *FileSession) save(values map[string]string) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (s *FileSession) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

func (s *FileSession) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		values = map[string]string{}
	}
	values[key] = value
	return s.save(values)
}

func (s *FileSession) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

// clearSession drops both tokens; the first error wins.
func clearSession(s SessionStore) error {
	err := s.Remove(KeyAuthToken)
	if rerr := s.Remove(KeyRefreshToken); err == nil {
		err = rerr
	}
	return err
}
