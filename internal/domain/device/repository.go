package device

import (
	"context"

	"github.com/google/uuid"
)

// TokenRepository defines persistence operations for push tokens.
type TokenRepository interface {
	// Upsert registers the token, reactivating it if it was previously deactivated.
	Upsert(ctx context.Context, token *Token) error
	Deactivate(ctx context.Context, userID uuid.UUID, token string) error
	// DeactivateTokens marks tokens inactive regardless of owner, e.g. after the push gateway rejects them.
	DeactivateTokens(ctx context.Context, tokens []string) error
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*Token, error)
}
