package contract

import (
	"context"
	"time"

	"pdfchat-be/internal/entity"

	"github.com/google/uuid"
)

type AuthTokenRepository interface {
	Create(ctx context.Context, token *entity.AuthToken) error
	// FindByToken is a primary-key point lookup. Returns (nil, nil) when the
	// row does not exist.
	FindByToken(ctx context.Context, token string) (*entity.AuthToken, error)
	// Delete is idempotent for absent tokens.
	Delete(ctx context.Context, token string) error
	// SetActiveSession records which session the login last worked in.
	SetActiveSession(ctx context.Context, token string, sessionId uuid.UUID) error
	// DeleteExpired purges rows past their expiry, returning how many were
	// removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
