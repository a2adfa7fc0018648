package services

import (
	"context"
	"sync"
	"testing"

	"bookstore/auth"
	"bookstore/email"
	"bookstore/repositories"
	"bookstore/testutil"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) last() (email.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return email.Message{}, false
	}
	return s.sent[len(s.sent)-1], true
}

func newTestStore(t *testing.T) *repositories.Store {
	t.Helper()
	return repositories.NewStore(testutil.OpenDB(t))
}

func newTestTokens() *auth.TokenManager {
	return auth.NewTokenManager(testutil.JwtOptions())
}
