package contract

import (
	"context"
	"time"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) error
	// Touch moves last_activity_at forward. Called only from chat/upload
	// paths, never from read-only listing.
	Touch(ctx context.Context, id uuid.UUID, now time.Time) error
	// CompareAndSwapStatus transitions status only when the row is still in
	// the expected prior state, returning whether the swap applied. A miss is
	// a silent no-op: a direct user action and the timed sweep converge to
	// the same outcome regardless of ordering. Transitioning to ARCHIVED
	// stamps archived_at; back to ACTIVE clears it and refreshes
	// last_activity_at.
	CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to entity.SessionStatus, now time.Time) (bool, error)
	// DeleteHard removes the row permanently (not a soft delete).
	DeleteHard(ctx context.Context, id uuid.UUID) error
}
