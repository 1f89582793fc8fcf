package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/statify/internal/auth"
	"github.com/desertthunder/statify/internal/shared"
)

var _ auth.VerifierStore = (*PendingAuthRepository)(nil)

// PendingAuthRepository persists the single pending login in the pending_auth table.
//
// Rows older than the TTL read as absent and are removed on the next Load.
type PendingAuthRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewPendingAuthRepository creates a repository. A zero ttl disables expiry.
func NewPendingAuthRepository(db *sql.DB, ttl time.Duration) *PendingAuthRepository {
	return &PendingAuthRepository{db: db, ttl: ttl, now: time.Now}
}

// Save upserts the pending login under [auth.VerifierKey], replacing any previous one.
func (r *PendingAuthRepository) Save(ctx context.Context, p auth.PendingAuth) error {
	if p.Verifier == "" {
		return fmt.Errorf("%w: empty code verifier", shared.ErrInvalidArgument)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}

	query := `
		INSERT INTO pending_auth (name, verifier, state, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			verifier = excluded.verifier,
			state = excluded.state,
			created_at = excluded.created_at
	`

	if _, err := r.db.ExecContext(ctx, query, auth.VerifierKey, p.Verifier, p.State, p.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to save pending login: %w", err)
	}
	return nil
}

// Load returns the pending login or [shared.ErrMissingVerifier].
func (r *PendingAuthRepository) Load(ctx context.Context) (auth.PendingAuth, error) {
	query := `
		SELECT verifier, state, created_at
		FROM pending_auth
		WHERE name = ?
	`

	var p auth.PendingAuth
	err := r.db.QueryRowContext(ctx, query, auth.VerifierKey).Scan(&p.Verifier, &p.State, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.PendingAuth{}, shared.ErrMissingVerifier
	}
	if err != nil {
		return auth.PendingAuth{}, fmt.Errorf("failed to load pending login: %w", err)
	}

	if r.ttl > 0 && r.now().Sub(p.CreatedAt) > r.ttl {
		if err := r.Clear(ctx); err != nil {
			return auth.PendingAuth{}, err
		}
		return auth.PendingAuth{}, fmt.Errorf("%w: pending login expired", shared.ErrMissingVerifier)
	}
	return p, nil
}

// Clear removes the pending login. Clearing an empty table is not an error.
func (r *PendingAuthRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM pending_auth WHERE name = ?", auth.VerifierKey); err != nil {
		return fmt.Errorf("failed to clear pending login: %w", err)
	}
	return nil
}
