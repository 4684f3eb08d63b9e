package flow

import (
	"context"
	"time"

	"github.com/ccotek/cocoti-pool-flow/internal/logger"
	"github.com/ccotek/cocoti-pool-flow/internal/token"
)

// tokenGraceWait tolerance for the write-then-read race against the
// token store
const tokenGraceWait = 200 * time.Millisecond

// bearerFor reads the stored token for the session's client. When the
// store does not see a token that this session just wrote, it waits the
// grace period once and then falls back to the in-session copy.
func bearerFor(ctx context.Context, store token.Store, s *Session) string {
	tok, err := store.Get(ctx, s.ClientID)
	if err != nil {
		logger.Warn("Token read failed for client %s: %v", s.ClientID, err)
	}
	if tok != "" {
		return tok
	}

	s.mu.Lock()
	cached := s.token
	s.mu.Unlock()
	if cached == "" {
		return ""
	}

	time.Sleep(tokenGraceWait)
	tok, _ = store.Get(ctx, s.ClientID)
	if tok != "" {
		return tok
	}
	return cached
}

// persistToken stores a freshly received token and caches it on the
// session for immediate reuse
func persistToken(ctx context.Context, store token.Store, s *Session, tok string) {
	if tok == "" {
		return
	}
	if err := store.Set(ctx, s.ClientID, tok); err != nil {
		logger.Error("Token write failed for client %s: %v", s.ClientID, err)
	}
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

// dropToken clears both the stored and the cached token, used on 401
func dropToken(ctx context.Context, store token.Store, s *Session) {
	if err := store.Clear(ctx, s.ClientID); err != nil {
		logger.Warn("Token clear failed for client %s: %v", s.ClientID, err)
	}
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}
