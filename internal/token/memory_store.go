package token

import (
	"context"
	"sync"
	"time"
)

// MemoryStore process-local token store, used when no database is
// configured and as a test double
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (s *MemoryStore) Get(ctx context.Context, clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok := s.tokens[clientID]
	if tok != "" && expired(tok, time.Now()) {
		return "", nil
	}
	return tok, nil
}

func (s *MemoryStore) Set(ctx context.Context, clientID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[clientID] = token
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, clientID)
	return nil
}
