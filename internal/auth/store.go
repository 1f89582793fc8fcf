package auth

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/statify/internal/shared"
)

// VerifierKey is the fixed name of the single pending-login slot.
const VerifierKey = "code_verifier"

// PendingAuth is the secret half of an in-flight login: it must come back unchanged to complete the exchange.
type PendingAuth struct {
	Verifier  string
	State     string
	CreatedAt time.Time
}

// VerifierStore holds at most one [PendingAuth].
//
// Save overwrites any previous value. Load returns [shared.ErrMissingVerifier] when nothing (or nothing still valid) is stored.
type VerifierStore interface {
	Save(ctx context.Context, p PendingAuth) error
	Load(ctx context.Context) (PendingAuth, error)
	Clear(ctx context.Context) error
}

// MemoryStore keeps the pending login for the lifetime of the process.
type MemoryStore struct {
	mu      sync.Mutex
	pending map[string]PendingAuth
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[string]PendingAuth, 1)}
}

func (s *MemoryStore) Save(_ context.Context, p PendingAuth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[VerifierKey] = p
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (PendingAuth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[VerifierKey]
	if !ok || p.Verifier == "" {
		return PendingAuth{}, shared.ErrMissingVerifier
	}
	return p, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, VerifierKey)
	return nil
}
