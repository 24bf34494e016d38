package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionType string

const (
	SessionTypeLab    SessionType = "LAB"
	SessionTypeTheory SessionType = "THEORY"
)

func (t SessionType) IsValid() bool {
	return t == SessionTypeLab || t == SessionTypeTheory
}

// Session is one attendance-taking interval for a course. At most one
// session per course is active at any time; creating a new one ends
// the previous active one inside the same transaction.
//
// All deadlines are absolute epoch milliseconds so the instructor
// display, the verifier and the rotation scheduler agree on window
// arithmetic without timezone conversions.
type Session struct {
	ID        uuid.UUID   `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	CourseID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"course_id"`
	Type      SessionType `gorm:"type:session_type;not null" json:"type"`
	StartTime int64       `gorm:"not null" json:"start_time"`
	EndTime   *int64      `json:"end_time,omitempty"`
	IsActive  bool        `gorm:"not null;default:false;index" json:"is_active"`
	// IsLocked pauses code distribution and intake without ending the
	// session.
	IsLocked bool `gorm:"not null;default:false" json:"is_locked"`
	// Code is the session secret: a 6-digit PIN for THEORY, an opaque
	// random string for LAB. The LAB secret itself is never shown to
	// students; only tokens derived from it are.
	Code           *string   `gorm:"type:varchar(64)" json:"-"`
	LastCodeUpdate int64     `gorm:"not null" json:"last_code_update"`
	CreatedBy      uuid.UUID `gorm:"type:uuid;not null;index" json:"created_by"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
