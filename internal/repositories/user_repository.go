package repositories

import (
	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/models"
)

type UserRepository interface {
	GetByID(id uuid.UUID) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	Delete(id uuid.UUID) error
	ExistsByUsername(username string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	// UpdateFaceEnrollment overwrites the stored descriptor and snapshot
	// pointer; nil descriptor clears the enrollment.
	UpdateFaceEnrollment(id uuid.UUID, descriptor []float64, snapshotPath *string) error
}
