package repositories

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"gorm.io/gorm"
)

type CourseRepository interface {
	GetByID(id uuid.UUID) (*models.Course, error)
	Create(course *models.Course) error
	ListByFaculty(facultyID uuid.UUID) ([]models.Course, error)
	Enroll(courseID, studentID uuid.UUID) error
	IsEnrolled(courseID, studentID uuid.UUID) (bool, error)
	ListEnrolledStudents(courseID uuid.UUID) ([]models.User, error)
}

type gormCourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &gormCourseRepository{db: db}
}

func (r *gormCourseRepository) GetByID(id uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := r.db.First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (r *gormCourseRepository) Create(course *models.Course) error {
	return r.db.Create(course).Error
}

func (r *gormCourseRepository) ListByFaculty(facultyID uuid.UUID) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.Where("faculty_id = ?", facultyID).Order("created_at").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *gormCourseRepository) Enroll(courseID, studentID uuid.UUID) error {
	enrollment := &models.Enrollment{CourseID: courseID, StudentID: studentID}
	return r.db.Create(enrollment).Error
}

func (r *gormCourseRepository) IsEnrolled(courseID, studentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormCourseRepository) ListEnrolledStudents(courseID uuid.UUID) ([]models.User, error) {
	var students []models.User
	err := r.db.
		Joins("JOIN enrollments ON enrollments.student_id = users.id").
		Where("enrollments.course_id = ?", courseID).
		Order("users.username").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
