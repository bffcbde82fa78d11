package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Session struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID      `gorm:"type:uuid;not null;index:ix_sessions_user_status,priority:1"`
	Title          string         `gorm:"type:varchar(255);not null"`
	Status         string         `gorm:"type:varchar(20);not null;default:'ACTIVE';index:ix_sessions_user_status,priority:2"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	LastActivityAt time.Time      `gorm:"not null;index"`
	ArchivedAt     *time.Time
}

func (Session) TableName() string {
	return "sessions"
}
