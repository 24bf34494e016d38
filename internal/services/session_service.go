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

// SessionService owns the session lifecycle: create, end, lock/unlock
// and manual code regeneration. Every mutation verifies that the
// caller is the instructor who owns the session's course.
type SessionService struct {
	sessionRepo    repositories.SessionRepository
	courseRepo     repositories.CourseRepository
	attendanceRepo repositories.AttendanceRepository

	pinValidity     time.Duration
	labWindowMillis int64
	labSecretLength int

	// Now is the clock used for all deadline arithmetic. Tests swap it.
	Now func() time.Time
}

func NewSessionService(sessionRepo repositories.SessionRepository, courseRepo repositories.CourseRepository, attendanceRepo repositories.AttendanceRepository, cfg *config.Config) (*SessionService, error) {
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

	secretLen := cfg.Session.LabSecretLength
	if secretLen < 20 {
		secretLen = 32
	}

	return &SessionService{
		sessionRepo:     sessionRepo,
		courseRepo:      courseRepo,
		attendanceRepo:  attendanceRepo,
		pinValidity:     pinValidity,
		labWindowMillis: labWindow,
		labSecretLength: secretLen,
		Now:             time.Now,
	}, nil
}

// LabWindow is the rotation period of derived LAB tokens, exposed for
// display surfaces that refresh on window boundaries.
func (s *SessionService) LabWindow() time.Duration {
	return time.Duration(s.labWindowMillis) * time.Millisecond
}

// Create opens a new attendance session for the course. Any session
// still active for the course is ended in the same transaction, so the
// one-active-session-per-course invariant holds at every instant. This
// is the expected re-open workflow, not an error.
func (s *SessionService) Create(facultyID, courseID uuid.UUID, sessionType models.SessionType) (*models.Session, error) {
	if !sessionType.IsValid() {
		return nil, fmt.Errorf("invalid session type %q", sessionType)
	}

	course, err := s.courseRepo.GetByID(courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if course.FacultyID != facultyID {
		return nil, ErrNotAuthorized
	}

	code, err := s.mintSecret(sessionType)
	if err != nil {
		return nil, err
	}

	nowMillis := s.Now().UnixMilli()
	session := &models.Session{
		CourseID:       courseID,
		Type:           sessionType,
		StartTime:      nowMillis,
		IsActive:       true,
		IsLocked:       false,
		Code:           &code,
		LastCodeUpdate: nowMillis,
		CreatedBy:      facultyID,
	}

	if err := s.sessionRepo.CreateTakingOver(session, nowMillis); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	metrics.SessionsCreated.WithLabelValues(string(sessionType)).Inc()
	return session, nil
}

// End closes the session. Ending an already-ended session is a no-op
// so duplicate requests from a flaky instructor client stay harmless.
func (s *SessionService) End(facultyID, sessionID uuid.UUID) error {
	session, err := s.ownedSession(facultyID, sessionID)
	if err != nil {
		return err
	}
	if !session.IsActive {
		return nil
	}
	return s.sessionRepo.End(sessionID, s.Now().UnixMilli())
}

// ToggleLock flips the lock and returns the new state. A locked
// session stays active but neither displays nor accepts codes.
func (s *SessionService) ToggleLock(facultyID, sessionID uuid.UUID) (bool, error) {
	session, err := s.ownedSession(facultyID, sessionID)
	if err != nil {
		return false, err
	}

	newState := !session.IsLocked
	if err := s.sessionRepo.SetLocked(sessionID, newState); err != nil {
		return false, err
	}
	return newState, nil
}

// RegenerateCode mints a fresh secret out of band, independent of the
// scheduled rotation. Useful when an instructor suspects the current
// code leaked.
func (s *SessionService) RegenerateCode(facultyID, sessionID uuid.UUID) (string, error) {
	session, err := s.ownedSession(facultyID, sessionID)
	if err != nil {
		return "", err
	}
	if !session.IsActive {
		return "", ErrSessionInactive
	}

	code, err := s.mintSecret(session.Type)
	if err != nil {
		return "", err
	}
	if err := s.sessionRepo.UpdateCode(sessionID, code, s.Now().UnixMilli()); err != nil {
		return "", err
	}
	return code, nil
}

// DisplayCode is what the instructor's display surface shows. For
// THEORY it is the stored PIN; for LAB it is the freshly derived
// rotating token, recomputed on every poll without touching storage.
type DisplayCode struct {
	SessionID uuid.UUID          `json:"session_id"`
	Type      models.SessionType `json:"type"`
	Code      string             `json:"code"`
	// ExpiresAt is when the displayed value goes stale, epoch millis.
	ExpiresAt int64 `json:"expires_at"`
}

func (s *SessionService) DisplayCode(facultyID, sessionID uuid.UUID) (*DisplayCode, error) {
	session, err := s.ownedSession(facultyID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, ErrSessionInactive
	}
	if session.IsLocked {
		return nil, ErrSessionLocked
	}
	if session.Code == nil {
		return nil, ErrInvalidCode
	}

	nowMillis := s.Now().UnixMilli()
	display := &DisplayCode{
		SessionID: session.ID,
		Type:      session.Type,
	}

	switch session.Type {
	case models.SessionTypeTheory:
		display.Code = *session.Code
		display.ExpiresAt = session.StartTime + s.pinValidity.Milliseconds()
	case models.SessionTypeLab:
		display.Code = token.Derive(*session.Code, nowMillis, s.labWindowMillis)
		display.ExpiresAt = (nowMillis/s.labWindowMillis + 1) * s.labWindowMillis
	}

	return display, nil
}

// GetActive returns the course's active session, if any. Students poll
// this to learn that attendance is open.
func (s *SessionService) GetActive(courseID uuid.UUID) (*models.Session, error) {
	return s.sessionRepo.GetActiveByCourse(courseID)
}

// SessionSummary is one row of the instructor's session history.
type SessionSummary struct {
	Session         models.Session `json:"session"`
	AttendanceCount int64          `json:"attendance_count"`
}

// Search lists past sessions of a course with attendance counts,
// newest first.
func (s *SessionService) Search(facultyID, courseID uuid.UUID, search repositories.SessionSearch) ([]SessionSummary, error) {
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

	sessions, err := s.sessionRepo.ListByCourse(courseID, search)
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		count, err := s.attendanceRepo.CountBySession(session.ID)
		if err != nil {
			return nil, err
		}
		// never leak the secret through history listings
		session.Code = nil
		summaries = append(summaries, SessionSummary{Session: session, AttendanceCount: count})
	}
	return summaries, nil
}

func (s *SessionService) ownedSession(facultyID, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.CreatedBy != facultyID {
		return nil, ErrNotAuthorized
	}
	return session, nil
}

func (s *SessionService) mintSecret(sessionType models.SessionType) (string, error) {
	if sessionType == models.SessionTypeTheory {
		return models.GeneratePIN()
	}
	return models.GenerateSecureToken(s.labSecretLength)
}
