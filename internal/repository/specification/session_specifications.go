package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatusEquals struct {
	Status string
}

func (s StatusEquals) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// LastActivityBefore selects sessions idle past the cutoff (archive pass).
type LastActivityBefore struct {
	Cutoff time.Time
}

func (s LastActivityBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("last_activity_at < ?", s.Cutoff)
}

// ArchivedBefore selects sessions archived past the retention cutoff
// (hard-delete pass).
type ArchivedBefore struct {
	Cutoff time.Time
}

func (s ArchivedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("archived_at IS NOT NULL AND archived_at < ?", s.Cutoff)
}

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByNamespace struct {
	Namespace string
}

func (s ByNamespace) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("namespace = ?", s.Namespace)
}
