package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository interface {
	GetBySessionAndStudent(sessionID, studentID uuid.UUID) (*models.Attendance, error)
	// MarkPresent converges the (session, student) pair to a single
	// PRESENT row. Racing calls for the same pair resolve on the
	// uniqueness index, not on application locks. An existing PRESENT
	// row is left untouched, timestamp included.
	MarkPresent(sessionID, studentID uuid.UUID, tsMillis int64, faceCheck *models.FaceCheck) (*models.Attendance, error)
	// SetStatus is the instructor override path: same single-row
	// invariant, but the status is forced either way.
	SetStatus(sessionID, studentID uuid.UUID, status models.AttendanceStatus, tsMillis int64) (*models.Attendance, error)
	ListBySession(sessionID uuid.UUID) ([]models.Attendance, error)
	CountBySession(sessionID uuid.UUID) (int64, error)
	CountPresentForStudent(studentID uuid.UUID, sessionIDs []uuid.UUID) (int64, error)
}

type gormAttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &gormAttendanceRepository{db: db}
}

func (r *gormAttendanceRepository) GetBySessionAndStudent(sessionID, studentID uuid.UUID) (*models.Attendance, error) {
	var att models.Attendance
	err := r.db.
		Where("session_id = ? AND student_id = ?", sessionID, studentID).
		First(&att).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &att, nil
}

func (r *gormAttendanceRepository) MarkPresent(sessionID, studentID uuid.UUID, tsMillis int64, faceCheck *models.FaceCheck) (*models.Attendance, error) {
	att := &models.Attendance{
		SessionID: sessionID,
		StudentID: studentID,
		Timestamp: tsMillis,
		Status:    models.StatusPresent,
		FaceCheck: faceCheck,
	}

	// INSERT .. ON CONFLICT (session_id, student_id) DO UPDATE ..
	// WHERE attendances.status <> 'PRESENT'. The WHERE keeps a repeat
	// mark from bumping the original timestamp while still flipping a
	// manual ABSENT back to PRESENT.
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "student_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":     models.StatusPresent,
			"timestamp":  tsMillis,
			"face_check": faceCheck,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Neq{
				Column: clause.Column{Table: "attendances", Name: "status"},
				Value:  models.StatusPresent,
			},
		}},
	}).Create(att).Error
	if err != nil {
		return nil, err
	}

	// The insert id is not authoritative when the conflict branch ran;
	// read the canonical row back.
	return r.GetBySessionAndStudent(sessionID, studentID)
}

func (r *gormAttendanceRepository) SetStatus(sessionID, studentID uuid.UUID, status models.AttendanceStatus, tsMillis int64) (*models.Attendance, error) {
	att := &models.Attendance{
		SessionID: sessionID,
		StudentID: studentID,
		Timestamp: tsMillis,
		Status:    status,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "student_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":    status,
			"timestamp": tsMillis,
		}),
	}).Create(att).Error
	if err != nil {
		return nil, err
	}

	return r.GetBySessionAndStudent(sessionID, studentID)
}

func (r *gormAttendanceRepository) ListBySession(sessionID uuid.UUID) ([]models.Attendance, error) {
	var atts []models.Attendance
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("timestamp").
		Find(&atts).Error
	if err != nil {
		return nil, err
	}
	return atts, nil
}

func (r *gormAttendanceRepository) CountBySession(sessionID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Attendance{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (r *gormAttendanceRepository) CountPresentForStudent(studentID uuid.UUID, sessionIDs []uuid.UUID) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.Attendance{}).
		Where("student_id = ? AND status = ? AND session_id IN ?", studentID, models.StatusPresent, sessionIDs).
		Count(&count).Error
	return count, err
}
