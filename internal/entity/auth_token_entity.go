package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken is a stateful login credential: an opaque random value whose
// validity is a database row. Deleting the row revokes access instantly,
// with no stale-acceptance window. One row per login, many per user.
type AuthToken struct {
	Token           string
	UserId          uuid.UUID
	ActiveSessionId *uuid.UUID
	IssuedAt        time.Time
	ExpiresAt       time.Time
}

func (t *AuthToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
