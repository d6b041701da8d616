package ports

import (
	"context"

	"github.com/bnema/teamsync-cli/internal/domain"
)

// TokenStore persists at most one access/refresh pair. Save replaces the pair
// atomically: a concurrent Get never observes an access token without its
// paired refresh token.
type TokenStore interface {
	// Get returns domain.ErrNotSignedIn when no pair is persisted.
	Get(ctx context.Context) (domain.TokenPair, error)
	Save(ctx context.Context, pair domain.TokenPair) error
	Clear(ctx context.Context) error
}
