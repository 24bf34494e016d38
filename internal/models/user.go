package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	return r == RoleStudent || r == RoleFaculty || r == RoleAdmin
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Username     string    `gorm:"type:citext;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:citext;uniqueIndex;not null" json:"email"`
	Role         UserRole  `gorm:"type:user_role;default:'student'" json:"role"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	TOTPSecret   *string   `gorm:"type:varchar(32)" json:"-"`
	TOTPEnabled  *bool     `gorm:"default:false" json:"totp_enabled"`

	// FaceDescriptor is the 128-dimensional embedding captured at face
	// enrollment. Empty means the student never enrolled, so LAB
	// attendance falls back to the unverified-identity path.
	FaceDescriptor []float64 `gorm:"serializer:json;type:jsonb" json:"-"`
	// FaceSnapshotPath points at the enrollment capture kept in the
	// snapshot store for instructor review.
	FaceSnapshotPath *string `gorm:"type:varchar(512)" json:"-"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) HasFaceEnrollment() bool {
	return u != nil && len(u.FaceDescriptor) > 0
}
