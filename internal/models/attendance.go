package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusAbsent  AttendanceStatus = "ABSENT"
)

func (s AttendanceStatus) IsValid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// FaceCheck records how far the biometric gate got for a LAB scan.
// FaceCheckUnverified marks the degraded no-enrollment path where a
// live face was seen but no identity comparison was possible; the
// instructor report surfaces it instead of treating it as verified.
type FaceCheck string

const (
	FaceCheckVerified   FaceCheck = "VERIFIED"
	FaceCheckUnverified FaceCheck = "UNVERIFIED"
)

// Attendance is the single row per (session, student) pair. The
// uniqueness index is what makes concurrent duplicate marks converge
// to one PRESENT row instead of two.
type Attendance struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	SessionID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_session_student;index" json:"session_id"`
	StudentID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_session_student;index" json:"student_id"`
	Timestamp int64            `gorm:"not null" json:"timestamp"`
	Status    AttendanceStatus `gorm:"type:attendance_status;not null" json:"status"`
	FaceCheck *FaceCheck       `gorm:"type:varchar(16)" json:"face_check,omitempty"`
}

func (Attendance) TableName() string {
	return "attendances"
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
