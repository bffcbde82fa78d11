package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is immutable after registration except for password rotation.
type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
