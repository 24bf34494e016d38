package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/repositories"
	"github.com/kalimx03/warrior-track-new/internal/services"
	"github.com/kalimx03/warrior-track-new/internal/token"
)

func newTestSessionService(t *testing.T, sessionRepo *mockSessionRepo, courseRepo *mockCourseRepo) *services.SessionService {
	t.Helper()
	svc, err := services.NewSessionService(sessionRepo, courseRepo, &mockAttendanceRepo{}, newSessionTestConfig())
	if err != nil {
		t.Fatalf("failed to build session service: %v", err)
	}
	return svc
}

func TestSessionService_Create_TakesOverActiveSession(t *testing.T) {
	facultyID := uuid.New()
	courseID := uuid.New()

	courseRepo := &mockCourseRepo{
		getByIDFunc: func(id uuid.UUID) (*models.Course, error) {
			return &models.Course{ID: courseID, FacultyID: facultyID}, nil
		},
	}

	var created *models.Session
	sessionRepo := &mockSessionRepo{
		createTakingOverFunc: func(session *models.Session, nowMillis int64) error {
			created = session
			return nil
		},
	}

	svc := newTestSessionService(t, sessionRepo, courseRepo)
	now := time.UnixMilli(1_700_000_000_000)
	svc.Now = func() time.Time { return now }

	session, err := svc.Create(facultyID, courseID, models.SessionTypeLab)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created == nil {
		t.Fatalf("expected CreateTakingOver to be called")
	}
	if !session.IsActive {
		t.Errorf("expected new session to be active")
	}
	if session.StartTime != now.UnixMilli() {
		t.Errorf("expected start time %d, got %d", now.UnixMilli(), session.StartTime)
	}
	if session.Code == nil || len(*session.Code) < 20 {
		t.Errorf("expected an opaque LAB secret, got %v", session.Code)
	}
}

func TestSessionService_Create_TheoryMintsSixDigitPIN(t *testing.T) {
	facultyID := uuid.New()
	courseID := uuid.New()

	courseRepo := &mockCourseRepo{
		getByIDFunc: func(id uuid.UUID) (*models.Course, error) {
			return &models.Course{ID: courseID, FacultyID: facultyID}, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		createTakingOverFunc: func(session *models.Session, nowMillis int64) error { return nil },
	}

	svc := newTestSessionService(t, sessionRepo, courseRepo)

	session, err := svc.Create(facultyID, courseID, models.SessionTypeTheory)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if session.Code == nil {
		t.Fatalf("expected a PIN")
	}
	if len(*session.Code) != 6 {
		t.Errorf("expected 6-digit PIN, got %q", *session.Code)
	}
	for _, r := range *session.Code {
		if r < '0' || r > '9' {
			t.Errorf("expected numeric PIN, got %q", *session.Code)
			break
		}
	}
	if (*session.Code)[0] == '0' {
		t.Errorf("expected PIN without leading zero, got %q", *session.Code)
	}
}

func TestSessionService_Create_NotCourseOwner(t *testing.T) {
	courseID := uuid.New()

	courseRepo := &mockCourseRepo{
		getByIDFunc: func(id uuid.UUID) (*models.Course, error) {
			return &models.Course{ID: courseID, FacultyID: uuid.New()}, nil
		},
	}

	svc := newTestSessionService(t, &mockSessionRepo{}, courseRepo)

	_, err := svc.Create(uuid.New(), courseID, models.SessionTypeLab)
	if !errors.Is(err, services.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestSessionService_End_AlreadyEndedIsNoOp(t *testing.T) {
	facultyID := uuid.New()
	sessionID := uuid.New()

	endCalled := false
	sessionRepo := &mockSessionRepo{
		getByIDFunc: func(id uuid.UUID) (*models.Session, error) {
			return &models.Session{ID: sessionID, CreatedBy: facultyID, IsActive: false}, nil
		},
		endFunc: func(id uuid.UUID, endMillis int64) error {
			endCalled = true
			return nil
		},
	}

	svc := newTestSessionService(t, sessionRepo, &mockCourseRepo{})

	if err := svc.End(facultyID, sessionID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if endCalled {
		t.Errorf("expected End not to touch an already-ended session")
	}
}

func TestSessionService_ToggleLock_Flips(t *testing.T) {
	facultyID := uuid.New()
	sessionID := uuid.New()

	var gotLocked bool
	sessionRepo := &mockSessionRepo{
		getByIDFunc: func(id uuid.UUID) (*models.Session, error) {
			return &models.Session{ID: sessionID, CreatedBy: facultyID, IsActive: true, IsLocked: false}, nil
		},
		setLockedFunc: func(id uuid.UUID, locked bool) error {
			gotLocked = locked
			return nil
		},
	}

	svc := newTestSessionService(t, sessionRepo, &mockCourseRepo{})

	locked, err := svc.ToggleLock(facultyID, sessionID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !locked || !gotLocked {
		t.Errorf("expected lock to flip on, got locked=%v stored=%v", locked, gotLocked)
	}
}

func TestSessionService_RegenerateCode_ReplacesSecret(t *testing.T) {
	facultyID := uuid.New()
	sessionID := uuid.New()
	oldCode := "000000"

	var storedCode string
	sessionRepo := &mockSessionRepo{
		getByIDFunc: func(id uuid.UUID) (*models.Session, error) {
			return &models.Session{
				ID:        sessionID,
				Type:      models.SessionTypeTheory,
				CreatedBy: facultyID,
				IsActive:  true,
				Code:      &oldCode,
			}, nil
		},
		updateCodeFunc: func(id uuid.UUID, code string, nowMillis int64) error {
			storedCode = code
			return nil
		},
	}

	svc := newTestSessionService(t, sessionRepo, &mockCourseRepo{})

	code, err := svc.RegenerateCode(facultyID, sessionID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if code != storedCode {
		t.Errorf("expected returned code %q to match stored %q", code, storedCode)
	}
	if code == oldCode {
		t.Errorf("expected a fresh code")
	}
}

func TestSessionService_DisplayCode_RefusesLocked(t *testing.T) {
	facultyID := uuid.New()
	sessionID := uuid.New()
	code := "654321"

	sessionRepo := &mockSessionRepo{
		getByIDFunc: func(id uuid.UUID) (*models.Session, error) {
			return &models.Session{
				ID:        sessionID,
				Type:      models.SessionTypeTheory,
				CreatedBy: facultyID,
				IsActive:  true,
				IsLocked:  true,
				Code:      &code,
			}, nil
		},
	}

	svc := newTestSessionService(t, sessionRepo, &mockCourseRepo{})

	_, err := svc.DisplayCode(facultyID, sessionID)
	if !errors.Is(err, services.ErrSessionLocked) {
		t.Fatalf("expected ErrSessionLocked, got %v", err)
	}
}

func TestSessionService_DisplayCode_LabDerivesToken(t *testing.T) {
	facultyID := uuid.New()
	sessionID := uuid.New()
	secret := "lab-session-secret-abcdef0123456789"

	sessionRepo := &mockSessionRepo{
		getByIDFunc: func(id uuid.UUID) (*models.Session, error) {
			return &models.Session{
				ID:        sessionID,
				Type:      models.SessionTypeLab,
				CreatedBy: facultyID,
				IsActive:  true,
				Code:      &secret,
			}, nil
		},
	}

	svc := newTestSessionService(t, sessionRepo, &mockCourseRepo{})
	now := time.UnixMilli(1_700_000_037_500)
	svc.Now = func() time.Time { return now }

	display, err := svc.DisplayCode(facultyID, sessionID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := token.Derive(secret, now.UnixMilli(), 15000)
	if display.Code != want {
		t.Errorf("expected derived token %s, got %s", want, display.Code)
	}
	if display.Code == secret {
		t.Errorf("display must never show the raw LAB secret")
	}
	wantExpiry := (now.UnixMilli()/15000 + 1) * 15000
	if display.ExpiresAt != wantExpiry {
		t.Errorf("expected expiry on window boundary %d, got %d", wantExpiry, display.ExpiresAt)
	}
}

func TestSessionService_Search_StripsSecrets(t *testing.T) {
	facultyID := uuid.New()
	courseID := uuid.New()
	secret := "should-not-leak"

	courseRepo := &mockCourseRepo{
		getByIDFunc: func(id uuid.UUID) (*models.Course, error) {
			return &models.Course{ID: courseID, FacultyID: facultyID}, nil
		},
	}
	sessionRepo := &mockSessionRepo{
		listByCourseFunc: func(id uuid.UUID, search repositories.SessionSearch) ([]models.Session, error) {
			return []models.Session{
				{ID: uuid.New(), CourseID: courseID, Type: models.SessionTypeLab, Code: &secret},
			}, nil
		},
	}
	attendanceRepo := &mockAttendanceRepo{
		countBySessionFunc: func(id uuid.UUID) (int64, error) { return 12, nil },
	}

	svc, err := services.NewSessionService(sessionRepo, courseRepo, attendanceRepo, newSessionTestConfig())
	if err != nil {
		t.Fatalf("failed to build session service: %v", err)
	}

	summaries, err := svc.Search(facultyID, courseID, repositories.SessionSearch{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].AttendanceCount != 12 {
		t.Errorf("expected attendance count 12, got %d", summaries[0].AttendanceCount)
	}
	if summaries[0].Session.Code != nil {
		t.Errorf("expected secret to be stripped from history listing")
	}
}
