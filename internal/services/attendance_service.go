package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/config"
	"github.com/kalimx03/warrior-track-new/internal/metrics"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/repositories"
	"github.com/kalimx03/warrior-track-new/internal/token"
)

// AttendanceService validates presented codes against session state
// and records presence. Mark is called concurrently by many students;
// per-pair convergence rides on the attendance uniqueness index, not
// on locks held here.
type AttendanceService struct {
	sessionRepo    repositories.SessionRepository
	attendanceRepo repositories.AttendanceRepository
	courseRepo     repositories.CourseRepository
	userRepo       repositories.UserRepository

	pinValidity     time.Duration
	labWindowMillis int64
	skewWindows     int

	// Now is the clock used for expiry and window arithmetic. Tests swap it.
	Now func() time.Time
}

func NewAttendanceService(
	sessionRepo repositories.SessionRepository,
	attendanceRepo repositories.AttendanceRepository,
	courseRepo repositories.CourseRepository,
	userRepo repositories.UserRepository,
	cfg *config.Config,
) (*AttendanceService, error) {
	pinValidity, err := cfg.Session.GetPINValidity()
	if err != nil {
		return nil, fmt.Errorf("invalid pin_validity: %w", err)
	}
	if pinValidity == 0 {
		pinValidity = 5 * time.Minute
	}

	labWindow := cfg.Session.LabWindowMillis
	if labWindow <= 0 {
		labWindow = token.LabWindowMillis
	}

	skew := cfg.Session.SkewWindows
	if skew < 0 {
		skew = 0
	}

	return &AttendanceService{
		sessionRepo:     sessionRepo,
		attendanceRepo:  attendanceRepo,
		courseRepo:      courseRepo,
		userRepo:        userRepo,
		pinValidity:     pinValidity,
		labWindowMillis: labWindow,
		skewWindows:     skew,
		Now:             time.Now,
	}, nil
}

// Mark verifies the presented code and records a PRESENT row for the
// student. The checks run in a fixed order so each failure mode maps
// to exactly one error. Repeated successful calls for the same
// (session, student) pair return the same attendance id and never
// create a second row.
func (s *AttendanceService) Mark(studentID, sessionID uuid.UUID, presentedCode string, faceCheck *models.FaceCheck) (uuid.UUID, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return uuid.Nil, s.fail("error", fmt.Errorf("load session: %w", err))
	}
	if session == nil {
		return uuid.Nil, s.fail("not_found", ErrSessionNotFound)
	}
	if !session.IsActive {
		return uuid.Nil, s.fail("inactive", ErrSessionInactive)
	}
	if session.IsLocked {
		return uuid.Nil, s.fail("locked", ErrSessionLocked)
	}

	enrolled, err := s.courseRepo.IsEnrolled(session.CourseID, studentID)
	if err != nil {
		return uuid.Nil, s.fail("error", fmt.Errorf("check enrollment: %w", err))
	}
	if !enrolled {
		return uuid.Nil, s.fail("not_enrolled", ErrNotEnrolled)
	}

	now := s.Now().UnixMilli()

	switch session.Type {
	case models.SessionTypeTheory:
		// PIN validity is measured from session start, independent of
		// rotation: a PIN presented after the window is rejected even
		// when it still matches the stored value.
		if now > session.StartTime+s.pinValidity.Milliseconds() {
			return uuid.Nil, s.fail("expired", ErrCodeExpired)
		}
		if session.Code == nil || presentedCode != *session.Code {
			return uuid.Nil, s.fail("invalid_code", ErrInvalidCode)
		}
	case models.SessionTypeLab:
		if session.Code != nil {
			// The presented value is a derived token, never the secret
			// itself. Accept the current window plus one for skew.
			if !token.Matches(*session.Code, presentedCode, now, s.labWindowMillis, s.skewWindows) {
				return uuid.Nil, s.fail("invalid_code", ErrInvalidCode)
			}
		}
	}

	att, err := s.attendanceRepo.MarkPresent(sessionID, studentID, now, faceCheck)
	if err != nil {
		return uuid.Nil, s.fail("error", fmt.Errorf("record attendance: %w", err))
	}

	metrics.MarkAttempts.WithLabelValues("success").Inc()
	return att.ID, nil
}

// ManualUpdate lets the owning instructor force a status, bypassing
// all code checks but keeping the one-row-per-pair invariant.
func (s *AttendanceService) ManualUpdate(facultyID, sessionID, studentID uuid.UUID, status models.AttendanceStatus) (uuid.UUID, error) {
	if !status.IsValid() {
		return uuid.Nil, fmt.Errorf("invalid attendance status %q", status)
	}

	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return uuid.Nil, ErrSessionNotFound
	}
	if session.CreatedBy != facultyID {
		return uuid.Nil, ErrNotAuthorized
	}

	att, err := s.attendanceRepo.SetStatus(sessionID, studentID, status, s.Now().UnixMilli())
	if err != nil {
		return uuid.Nil, fmt.Errorf("record attendance: %w", err)
	}
	return att.ID, nil
}

// CourseStats is a student's own attendance summary for one course.
type CourseStats struct {
	TotalSessions int     `json:"total_sessions"`
	Attended      int64   `json:"attended_sessions"`
	Percentage    float64 `json:"percentage"`
}

func (s *AttendanceService) StatsForStudent(studentID, courseID uuid.UUID) (*CourseStats, error) {
	sessions, err := s.sessionRepo.ListByCourse(courseID, repositories.SessionSearch{Limit: 100})
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}

	attended, err := s.attendanceRepo.CountPresentForStudent(studentID, ids)
	if err != nil {
		return nil, err
	}

	stats := &CourseStats{TotalSessions: len(sessions), Attended: attended}
	if len(sessions) > 0 {
		stats.Percentage = float64(attended) / float64(len(sessions)) * 100
	}
	return stats, nil
}

// RosterEntry is one student's row in the instructor's live roster,
// including the identity-verification level so a degraded LAB check
// surfaces as "unverified" instead of blending in.
type RosterEntry struct {
	StudentID uuid.UUID               `json:"student_id"`
	Username  string                  `json:"username"`
	Status    models.AttendanceStatus `json:"status"`
	Timestamp int64                   `json:"timestamp"`
	FaceCheck *models.FaceCheck       `json:"face_check,omitempty"`
}

// Roster lists recorded attendance for a session, owner-gated.
func (s *AttendanceService) Roster(facultyID, sessionID uuid.UUID) ([]RosterEntry, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.CreatedBy != facultyID {
		return nil, ErrNotAuthorized
	}

	atts, err := s.attendanceRepo.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}

	entries := make([]RosterEntry, 0, len(atts))
	for _, att := range atts {
		entry := RosterEntry{
			StudentID: att.StudentID,
			Status:    att.Status,
			Timestamp: att.Timestamp,
			FaceCheck: att.FaceCheck,
		}
		if user, err := s.userRepo.GetByID(att.StudentID); err == nil && user != nil {
			entry.Username = user.Username
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReportRow is one student's standing in the course-wide report.
type ReportRow struct {
	StudentID  uuid.UUID `json:"student_id"`
	Username   string    `json:"username"`
	Attended   int64     `json:"attended"`
	Total      int       `json:"total"`
	Percentage float64   `json:"percentage"`
}

// CourseReport builds the per-student attendance report for the
// owning instructor.
func (s *AttendanceService) CourseReport(facultyID, courseID uuid.UUID) ([]ReportRow, error) {
	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.FacultyID != facultyID {
		return nil, ErrNotAuthorized
	}

	sessions, err := s.sessionRepo.ListByCourse(courseID, repositories.SessionSearch{Limit: 100})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(sessions))
	for _, session := range sessions {
		ids = append(ids, session.ID)
	}

	students, err := s.courseRepo.ListEnrolledStudents(courseID)
	if err != nil {
		return nil, err
	}

	report := make([]ReportRow, 0, len(students))
	for _, student := range students {
		attended, err := s.attendanceRepo.CountPresentForStudent(student.ID, ids)
		if err != nil {
			return nil, err
		}
		row := ReportRow{
			StudentID: student.ID,
			Username:  student.Username,
			Attended:  attended,
			Total:     len(sessions),
		}
		if len(sessions) > 0 {
			row.Percentage = float64(attended) / float64(len(sessions)) * 100
		}
		report = append(report, row)
	}
	return report, nil
}

func (s *AttendanceService) fail(outcome string, err error) error {
	metrics.MarkAttempts.WithLabelValues(outcome).Inc()
	return err
}
