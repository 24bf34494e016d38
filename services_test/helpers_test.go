package services_test

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/config"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/repositories"
)

type mockSessionRepo struct {
	getByIDFunc           func(id uuid.UUID) (*models.Session, error)
	getActiveByCourseFunc func(courseID uuid.UUID) (*models.Session, error)
	createTakingOverFunc  func(session *models.Session, nowMillis int64) error
	endFunc               func(id uuid.UUID, endMillis int64) error
	setLockedFunc         func(id uuid.UUID, locked bool) error
	updateCodeFunc        func(id uuid.UUID, code string, nowMillis int64) error
	listStaleTheoryFunc   func(cutoffMillis int64) ([]models.Session, error)
	listByCourseFunc      func(courseID uuid.UUID, search repositories.SessionSearch) ([]models.Session, error)
}

func (m *mockSessionRepo) GetByID(id uuid.UUID) (*models.Session, error) {
	if m.getByIDFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getByIDFunc(id)
}

func (m *mockSessionRepo) GetActiveByCourse(courseID uuid.UUID) (*models.Session, error) {
	if m.getActiveByCourseFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getActiveByCourseFunc(courseID)
}

func (m *mockSessionRepo) CreateTakingOver(session *models.Session, nowMillis int64) error {
	if m.createTakingOverFunc == nil {
		return errors.New("not implemented")
	}
	return m.createTakingOverFunc(session, nowMillis)
}

func (m *mockSessionRepo) End(id uuid.UUID, endMillis int64) error {
	if m.endFunc == nil {
		return errors.New("not implemented")
	}
	return m.endFunc(id, endMillis)
}

func (m *mockSessionRepo) SetLocked(id uuid.UUID, locked bool) error {
	if m.setLockedFunc == nil {
		return errors.New("not implemented")
	}
	return m.setLockedFunc(id, locked)
}

func (m *mockSessionRepo) UpdateCode(id uuid.UUID, code string, nowMillis int64) error {
	if m.updateCodeFunc == nil {
		return errors.New("not implemented")
	}
	return m.updateCodeFunc(id, code, nowMillis)
}

func (m *mockSessionRepo) ListStaleTheory(cutoffMillis int64) ([]models.Session, error) {
	if m.listStaleTheoryFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.listStaleTheoryFunc(cutoffMillis)
}

func (m *mockSessionRepo) ListByCourse(courseID uuid.UUID, search repositories.SessionSearch) ([]models.Session, error) {
	if m.listByCourseFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.listByCourseFunc(courseID, search)
}

type mockAttendanceRepo struct {
	getBySessionAndStudentFunc func(sessionID, studentID uuid.UUID) (*models.Attendance, error)
	markPresentFunc            func(sessionID, studentID uuid.UUID, tsMillis int64, faceCheck *models.FaceCheck) (*models.Attendance, error)
	setStatusFunc              func(sessionID, studentID uuid.UUID, status models.AttendanceStatus, tsMillis int64) (*models.Attendance, error)
	listBySessionFunc          func(sessionID uuid.UUID) ([]models.Attendance, error)
	countBySessionFunc         func(sessionID uuid.UUID) (int64, error)
	countPresentForStudentFunc func(studentID uuid.UUID, sessionIDs []uuid.UUID) (int64, error)
}

func (m *mockAttendanceRepo) GetBySessionAndStudent(sessionID, studentID uuid.UUID) (*models.Attendance, error) {
	if m.getBySessionAndStudentFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getBySessionAndStudentFunc(sessionID, studentID)
}

func (m *mockAttendanceRepo) MarkPresent(sessionID, studentID uuid.UUID, tsMillis int64, faceCheck *models.FaceCheck) (*models.Attendance, error) {
	if m.markPresentFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.markPresentFunc(sessionID, studentID, tsMillis, faceCheck)
}

func (m *mockAttendanceRepo) SetStatus(sessionID, studentID uuid.UUID, status models.AttendanceStatus, tsMillis int64) (*models.Attendance, error) {
	if m.setStatusFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.setStatusFunc(sessionID, studentID, status, tsMillis)
}

func (m *mockAttendanceRepo) ListBySession(sessionID uuid.UUID) ([]models.Attendance, error) {
	if m.listBySessionFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.listBySessionFunc(sessionID)
}

func (m *mockAttendanceRepo) CountBySession(sessionID uuid.UUID) (int64, error) {
	if m.countBySessionFunc == nil {
		return 0, errors.New("not implemented")
	}
	return m.countBySessionFunc(sessionID)
}

func (m *mockAttendanceRepo) CountPresentForStudent(studentID uuid.UUID, sessionIDs []uuid.UUID) (int64, error) {
	if m.countPresentForStudentFunc == nil {
		return 0, errors.New("not implemented")
	}
	return m.countPresentForStudentFunc(studentID, sessionIDs)
}

type mockCourseRepo struct {
	getByIDFunc              func(id uuid.UUID) (*models.Course, error)
	createFunc               func(course *models.Course) error
	listByFacultyFunc        func(facultyID uuid.UUID) ([]models.Course, error)
	enrollFunc               func(courseID, studentID uuid.UUID) error
	isEnrolledFunc           func(courseID, studentID uuid.UUID) (bool, error)
	listEnrolledStudentsFunc func(courseID uuid.UUID) ([]models.User, error)
}

func (m *mockCourseRepo) GetByID(id uuid.UUID) (*models.Course, error) {
	if m.getByIDFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getByIDFunc(id)
}

func (m *mockCourseRepo) Create(course *models.Course) error {
	if m.createFunc == nil {
		return errors.New("not implemented")
	}
	return m.createFunc(course)
}

func (m *mockCourseRepo) ListByFaculty(facultyID uuid.UUID) ([]models.Course, error) {
	if m.listByFacultyFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.listByFacultyFunc(facultyID)
}

func (m *mockCourseRepo) Enroll(courseID, studentID uuid.UUID) error {
	if m.enrollFunc == nil {
		return errors.New("not implemented")
	}
	return m.enrollFunc(courseID, studentID)
}

func (m *mockCourseRepo) IsEnrolled(courseID, studentID uuid.UUID) (bool, error) {
	if m.isEnrolledFunc == nil {
		return false, errors.New("not implemented")
	}
	return m.isEnrolledFunc(courseID, studentID)
}

func (m *mockCourseRepo) ListEnrolledStudents(courseID uuid.UUID) ([]models.User, error) {
	if m.listEnrolledStudentsFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.listEnrolledStudentsFunc(courseID)
}

type mockUserRepo struct {
	getByIDFunc              func(id uuid.UUID) (*models.User, error)
	getByUsernameFunc        func(username string) (*models.User, error)
	getByEmailFunc           func(email string) (*models.User, error)
	createFunc               func(user *models.User) error
	updateFunc               func(user *models.User) error
	deleteFunc               func(id uuid.UUID) error
	existsByUsernameFunc     func(username string) (bool, error)
	existsByEmailFunc        func(email string) (bool, error)
	updateFaceEnrollmentFunc func(id uuid.UUID, descriptor []float64, snapshotPath *string) error
}

func (m *mockUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	if m.getByIDFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getByIDFunc(id)
}

func (m *mockUserRepo) GetByUsername(username string) (*models.User, error) {
	if m.getByUsernameFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getByUsernameFunc(username)
}

func (m *mockUserRepo) GetByEmail(email string) (*models.User, error) {
	if m.getByEmailFunc == nil {
		return nil, errors.New("not implemented")
	}
	return m.getByEmailFunc(email)
}

func (m *mockUserRepo) Create(user *models.User) error {
	if m.createFunc == nil {
		return errors.New("not implemented")
	}
	return m.createFunc(user)
}

func (m *mockUserRepo) Update(user *models.User) error {
	if m.updateFunc == nil {
		return errors.New("not implemented")
	}
	return m.updateFunc(user)
}

func (m *mockUserRepo) Delete(id uuid.UUID) error {
	if m.deleteFunc == nil {
		return errors.New("not implemented")
	}
	return m.deleteFunc(id)
}

func (m *mockUserRepo) ExistsByUsername(username string) (bool, error) {
	if m.existsByUsernameFunc == nil {
		return false, errors.New("not implemented")
	}
	return m.existsByUsernameFunc(username)
}

func (m *mockUserRepo) ExistsByEmail(email string) (bool, error) {
	if m.existsByEmailFunc == nil {
		return false, errors.New("not implemented")
	}
	return m.existsByEmailFunc(email)
}

func (m *mockUserRepo) UpdateFaceEnrollment(id uuid.UUID, descriptor []float64, snapshotPath *string) error {
	if m.updateFaceEnrollmentFunc == nil {
		return errors.New("not implemented")
	}
	return m.updateFaceEnrollmentFunc(id, descriptor, snapshotPath)
}

func newSessionTestConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{
			PINValidity:     "5m",
			LabWindowMillis: 15000,
			SkewWindows:     1,
			LabSecretLength: 32,
		},
	}
}
