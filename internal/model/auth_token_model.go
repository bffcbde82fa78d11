package model

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken rows are keyed by the opaque token value itself so validate is a
// single primary-key lookup, never a scan.
type AuthToken struct {
	Token           string     `gorm:"type:varchar(64);primaryKey"`
	UserId          uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActiveSessionId *uuid.UUID `gorm:"type:uuid"`
	IssuedAt        time.Time  `gorm:"not null"`
	ExpiresAt       time.Time  `gorm:"not null;index"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
