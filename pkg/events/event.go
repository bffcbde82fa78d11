package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "USER_LOGIN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeUserLogin       = "USER_LOGIN"
	TypeUserLogout      = "USER_LOGOUT"
	TypeSessionCreated  = "SESSION_CREATED"
	TypeSessionArchived = "SESSION_ARCHIVED"
	TypeSessionRestored = "SESSION_RESTORED"
	TypeSessionDeleted  = "SESSION_DELETED"
)

func NewUserLogin(userId uuid.UUID, now time.Time) BaseEvent {
	return BaseEvent{
		Type:       TypeUserLogin,
		Data:       map[string]interface{}{"user_id": userId.String()},
		OccurredAt: now,
	}
}

func NewUserLogout(userId uuid.UUID, now time.Time) BaseEvent {
	return BaseEvent{
		Type:       TypeUserLogout,
		Data:       map[string]interface{}{"user_id": userId.String()},
		OccurredAt: now,
	}
}

// NewSessionEvent builds a lifecycle event for one session transition. The
// actor distinguishes owner-initiated transitions from sweep-initiated ones.
func NewSessionEvent(eventType string, userId, sessionId uuid.UUID, actor string, now time.Time) BaseEvent {
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"user_id":    userId.String(),
			"session_id": sessionId.String(),
			"actor":      actor,
		},
		OccurredAt: now,
	}
}
