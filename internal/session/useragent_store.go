package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// UserAgentStore pins one user agent per session name and persists the map
// to a JSON file. Every assignment rewrites the whole file.
type UserAgentStore struct {
	path      string
	catalogue *Catalogue

	mu     sync.Mutex
	agents map[string]string
}

// OpenUserAgentStore loads path if it exists, otherwise starts empty
func OpenUserAgentStore(path string, catalogue *Catalogue) (*UserAgentStore, error) {
	s := &UserAgentStore{
		path:      path,
		catalogue: catalogue,
		agents:    make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.agents); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return s, nil
}

// Get returns the pinned user agent for a session, if any
func (s *UserAgentStore) Get(session string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ua, ok := s.agents[session]
	return ua, ok
}

// GetOrAssign returns the pinned user agent, assigning and persisting a random
// one on first use
func (s *UserAgentStore) GetOrAssign(session string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ua, ok := s.agents[session]; ok {
		return ua, nil
	}

	ua := s.catalogue.Random()
	s.agents[session] = ua
	if err := s.save(); err != nil {
		return ua, err
	}
	return ua, nil
}

// Len returns the number of pinned sessions
func (s *UserAgentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.agents)
}

// save writes the map as indented JSON. Caller holds mu.
func (s *UserAgentStore) save() error {
	data, err := json.MarshalIndent(s.agents, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
