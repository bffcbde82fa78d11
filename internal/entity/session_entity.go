package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusActive   SessionStatus = "ACTIVE"
	SessionStatusArchived SessionStatus = "ARCHIVED"
	SessionStatusDeleted  SessionStatus = "DELETED"
)

// Session is an isolated per-user workspace. LastActivityAt moves only on
// owner-initiated chat/upload, never on read-only listing.
type Session struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Title          string
	Status         SessionStatus
	Metadata       map[string]interface{}
	CreatedAt      time.Time
	LastActivityAt time.Time
	ArchivedAt     *time.Time
}
