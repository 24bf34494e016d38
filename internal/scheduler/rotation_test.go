package scheduler_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/config"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/repositories"
	"github.com/kalimx03/warrior-track-new/internal/scheduler"
)

type mockSessionRepo struct {
	listStaleTheoryFunc func(cutoffMillis int64) ([]models.Session, error)
	updateCodeFunc      func(id uuid.UUID, code string, nowMillis int64) error
}

func (m *mockSessionRepo) GetByID(id uuid.UUID) (*models.Session, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSessionRepo) GetActiveByCourse(courseID uuid.UUID) (*models.Session, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSessionRepo) CreateTakingOver(session *models.Session, nowMillis int64) error {
	return errors.New("not implemented")
}

func (m *mockSessionRepo) End(id uuid.UUID, endMillis int64) error {
	return errors.New("not implemented")
}

func (m *mockSessionRepo) SetLocked(id uuid.UUID, locked bool) error {
	return errors.New("not implemented")
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
	return nil, errors.New("not implemented")
}

func newScheduler(t *testing.T, repo repositories.SessionRepository) *scheduler.RotationScheduler {
	t.Helper()
	cfg := &config.Config{Rotation: config.RotationConfig{Interval: "5m"}}
	s, err := scheduler.New(repo, cfg)
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	return s
}

func TestRunOnceRotatesStaleSessions(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	staleID := uuid.New()

	var gotCutoff int64
	updated := map[uuid.UUID]string{}

	repo := &mockSessionRepo{
		listStaleTheoryFunc: func(cutoff int64) ([]models.Session, error) {
			gotCutoff = cutoff
			return []models.Session{{ID: staleID, Type: models.SessionTypeTheory}}, nil
		},
		updateCodeFunc: func(id uuid.UUID, code string, nowMillis int64) error {
			updated[id] = code
			return nil
		},
	}

	s := newScheduler(t, repo)
	s.Now = func() time.Time { return now }
	s.MintPIN = func() (string, error) { return "424242", nil }

	rotated, err := s.RunOnce()
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if rotated != 1 {
		t.Fatalf("expected 1 rotation, got %d", rotated)
	}
	if updated[staleID] != "424242" {
		t.Fatalf("stale session did not get the new PIN, got %q", updated[staleID])
	}

	wantCutoff := now.UnixMilli() - (5 * time.Minute).Milliseconds()
	if gotCutoff != wantCutoff {
		t.Fatalf("cutoff = %d, want %d", gotCutoff, wantCutoff)
	}
}

func TestRunOnceNothingStale(t *testing.T) {
	repo := &mockSessionRepo{
		listStaleTheoryFunc: func(cutoff int64) ([]models.Session, error) {
			return nil, nil
		},
	}

	s := newScheduler(t, repo)
	rotated, err := s.RunOnce()
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if rotated != 0 {
		t.Fatalf("expected no rotations, got %d", rotated)
	}
}

func TestRunOnceStopsOnUpdateError(t *testing.T) {
	repo := &mockSessionRepo{
		listStaleTheoryFunc: func(cutoff int64) ([]models.Session, error) {
			return []models.Session{{ID: uuid.New()}, {ID: uuid.New()}}, nil
		},
		updateCodeFunc: func(id uuid.UUID, code string, nowMillis int64) error {
			return errors.New("db down")
		},
	}

	s := newScheduler(t, repo)
	rotated, err := s.RunOnce()
	if err == nil {
		t.Fatal("expected error when update fails")
	}
	if rotated != 0 {
		t.Fatalf("expected 0 completed rotations, got %d", rotated)
	}
}
