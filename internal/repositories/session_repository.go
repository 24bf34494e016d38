package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"gorm.io/gorm"
)

// SessionSearch narrows ListByCourse. Zero values mean "no filter".
type SessionSearch struct {
	StartAfter  int64
	StartBefore int64
	Type        models.SessionType
	Limit       int
}

type SessionRepository interface {
	GetByID(id uuid.UUID) (*models.Session, error)
	GetActiveByCourse(courseID uuid.UUID) (*models.Session, error)
	// CreateTakingOver ends every active session of the course and
	// inserts the new one inside a single transaction, so no instant
	// exists where two sessions of the course read as active.
	CreateTakingOver(session *models.Session, nowMillis int64) error
	// End deactivates the session and stamps end_time. Ending an
	// already-ended session touches nothing.
	End(id uuid.UUID, endMillis int64) error
	SetLocked(id uuid.UUID, locked bool) error
	UpdateCode(id uuid.UUID, code string, nowMillis int64) error
	// ListStaleTheory returns active, unlocked THEORY sessions whose
	// code is older than the cutoff. Fed to the rotation scheduler.
	ListStaleTheory(cutoffMillis int64) ([]models.Session, error)
	ListByCourse(courseID uuid.UUID, search SessionSearch) ([]models.Session, error)
}

type gormSessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &gormSessionRepository{db: db}
}

func (r *gormSessionRepository) GetByID(id uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := r.db.First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *gormSessionRepository) GetActiveByCourse(courseID uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := r.db.
		Where("course_id = ? AND is_active = ?", courseID, true).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *gormSessionRepository) CreateTakingOver(session *models.Session, nowMillis int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Session{}).
			Where("course_id = ? AND is_active = ?", session.CourseID, true).
			Updates(map[string]interface{}{
				"is_active": false,
				"end_time":  nowMillis,
			}).Error
		if err != nil {
			return err
		}
		return tx.Create(session).Error
	})
}

func (r *gormSessionRepository) End(id uuid.UUID, endMillis int64) error {
	return r.db.Model(&models.Session{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active": false,
			"end_time":  endMillis,
		}).Error
}

func (r *gormSessionRepository) SetLocked(id uuid.UUID, locked bool) error {
	return r.db.Model(&models.Session{}).
		Where("id = ?", id).
		Update("is_locked", locked).Error
}

func (r *gormSessionRepository) UpdateCode(id uuid.UUID, code string, nowMillis int64) error {
	return r.db.Model(&models.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"code":             code,
			"last_code_update": nowMillis,
		}).Error
}

func (r *gormSessionRepository) ListStaleTheory(cutoffMillis int64) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.
		Where("is_active = ? AND is_locked = ? AND type = ? AND last_code_update <= ?",
			true, false, models.SessionTypeTheory, cutoffMillis).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *gormSessionRepository) ListByCourse(courseID uuid.UUID, search SessionSearch) ([]models.Session, error) {
	q := r.db.Where("course_id = ?", courseID).Order("start_time DESC")
	if search.StartAfter > 0 {
		q = q.Where("start_time >= ?", search.StartAfter)
	}
	if search.StartBefore > 0 {
		q = q.Where("start_time <= ?", search.StartBefore)
	}
	if search.Type != "" {
		q = q.Where("type = ?", search.Type)
	}
	limit := search.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var sessions []models.Session
	if err := q.Limit(limit).Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
