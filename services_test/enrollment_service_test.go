package services_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/facematch"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/services"
	"github.com/kalimx03/warrior-track-new/internal/storage"
)

type mockSnapshotStore struct {
	saveFunc   func(ctx context.Context, snap *storage.Snapshot) (*storage.Location, error)
	openFunc   func(ctx context.Context, loc *storage.Location) (*storage.Result, error)
	deleteFunc func(ctx context.Context, loc *storage.Location) error
}

func (m *mockSnapshotStore) Save(ctx context.Context, snap *storage.Snapshot) (*storage.Location, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, snap)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSnapshotStore) Open(ctx context.Context, loc *storage.Location) (*storage.Result, error) {
	if m.openFunc != nil {
		return m.openFunc(ctx, loc)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSnapshotStore) Delete(ctx context.Context, loc *storage.Location) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, loc)
	}
	return errors.New("not implemented")
}

func TestFaceEnrollmentService_Enroll_RejectsWrongDimensions(t *testing.T) {
	userID := uuid.New()
	mockRepo := &mockUserRepo{
		getByIDFunc: func(id uuid.UUID) (*models.User, error) {
			return &models.User{ID: userID}, nil
		},
	}

	svc := services.NewFaceEnrollmentService(mockRepo, nil)

	err := svc.Enroll(context.Background(), userID, services.EnrollInput{Descriptor: make([]float64, 64)})
	if !errors.Is(err, facematch.ErrBadDescriptor) {
		t.Fatalf("expected ErrBadDescriptor, got %v", err)
	}
}

func TestFaceEnrollmentService_Enroll_OverwritesDescriptor(t *testing.T) {
	userID := uuid.New()
	old := make([]float64, facematch.DescriptorLen)

	var stored []float64
	mockRepo := &mockUserRepo{
		getByIDFunc: func(id uuid.UUID) (*models.User, error) {
			return &models.User{ID: userID, FaceDescriptor: old}, nil
		},
		updateFaceEnrollmentFunc: func(id uuid.UUID, descriptor []float64, snapshotPath *string) error {
			stored = descriptor
			return nil
		},
	}

	svc := services.NewFaceEnrollmentService(mockRepo, nil)

	fresh := make([]float64, facematch.DescriptorLen)
	fresh[0] = 0.42
	if err := svc.Enroll(context.Background(), userID, services.EnrollInput{Descriptor: fresh}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(stored) != facematch.DescriptorLen || stored[0] != 0.42 {
		t.Errorf("expected re-registration to overwrite the descriptor")
	}
}

func TestFaceEnrollmentService_Reset_RequiresAdmin(t *testing.T) {
	callerID := uuid.New()
	targetID := uuid.New()

	mockRepo := &mockUserRepo{
		getByIDFunc: func(id uuid.UUID) (*models.User, error) {
			if id == callerID {
				return &models.User{ID: callerID, Role: models.RoleFaculty}, nil
			}
			return &models.User{ID: targetID, Role: models.RoleStudent}, nil
		},
	}

	svc := services.NewFaceEnrollmentService(mockRepo, nil)

	err := svc.Reset(context.Background(), callerID, targetID)
	if !errors.Is(err, services.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for non-admin, got %v", err)
	}
}

func TestFaceEnrollmentService_Reset_ClearsEnrollment(t *testing.T) {
	adminID := uuid.New()
	targetID := uuid.New()

	cleared := false
	mockRepo := &mockUserRepo{
		getByIDFunc: func(id uuid.UUID) (*models.User, error) {
			if id == adminID {
				return &models.User{ID: adminID, Role: models.RoleAdmin}, nil
			}
			return &models.User{ID: targetID, Role: models.RoleStudent, FaceDescriptor: make([]float64, facematch.DescriptorLen)}, nil
		},
		updateFaceEnrollmentFunc: func(id uuid.UUID, descriptor []float64, snapshotPath *string) error {
			if descriptor != nil || snapshotPath != nil {
				t.Fatalf("expected cleared enrollment, got descriptor=%v path=%v", descriptor, snapshotPath)
			}
			cleared = true
			return nil
		},
	}

	svc := services.NewFaceEnrollmentService(mockRepo, nil)

	if err := svc.Reset(context.Background(), adminID, targetID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cleared {
		t.Errorf("expected UpdateFaceEnrollment to be called with nils")
	}
}

func TestFaceEnrollmentService_Descriptor_NilWhenNeverEnrolled(t *testing.T) {
	userID := uuid.New()
	mockRepo := &mockUserRepo{
		getByIDFunc: func(id uuid.UUID) (*models.User, error) {
			return &models.User{ID: userID}, nil
		},
	}

	svc := services.NewFaceEnrollmentService(mockRepo, nil)

	descriptor, err := svc.Descriptor(userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if descriptor != nil {
		t.Errorf("expected nil descriptor for unenrolled user, got %v", descriptor)
	}
}

func TestFaceEnrollmentService_Snapshot_StreamsStoredCapture(t *testing.T) {
	facultyID := uuid.New()
	studentID := uuid.New()
	path := "snapshots/" + studentID.String() + ".jpg"

	mockRepo := &mockUserRepo{
		getByIDFunc: func(id uuid.UUID) (*models.User, error) {
			if id == facultyID {
				return &models.User{ID: facultyID, Role: models.RoleFaculty}, nil
			}
			return &models.User{ID: studentID, Role: models.RoleStudent, FaceSnapshotPath: &path}, nil
		},
	}
	store := &mockSnapshotStore{
		openFunc: func(ctx context.Context, loc *storage.Location) (*storage.Result, error) {
			if loc.Path != path {
				t.Fatalf("expected stored path %q, got %q", path, loc.Path)
			}
			return &storage.Result{
				Reader:      io.NopCloser(strings.NewReader("jpeg-bytes")),
				ContentType: "image/jpeg",
				Size:        10,
			}, nil
		},
	}

	svc := services.NewFaceEnrollmentService(mockRepo, store)

	result, err := svc.Snapshot(context.Background(), facultyID, studentID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer result.Reader.Close()

	body, err := io.ReadAll(result.Reader)
	if err != nil {
		t.Fatalf("failed to read snapshot stream: %v", err)
	}
	if string(body) != "jpeg-bytes" || result.ContentType != "image/jpeg" {
		t.Errorf("unexpected snapshot stream: body=%q content-type=%q", body, result.ContentType)
	}
}

func TestFaceEnrollmentService_Snapshot_StudentCannotFetchOthers(t *testing.T) {
	callerID := uuid.New()
	targetID := uuid.New()
	path := "snapshots/other.jpg"

	mockRepo := &mockUserRepo{
		getByIDFunc: func(id uuid.UUID) (*models.User, error) {
			if id == callerID {
				return &models.User{ID: callerID, Role: models.RoleStudent}, nil
			}
			return &models.User{ID: targetID, Role: models.RoleStudent, FaceSnapshotPath: &path}, nil
		},
	}

	svc := services.NewFaceEnrollmentService(mockRepo, &mockSnapshotStore{})

	_, err := svc.Snapshot(context.Background(), callerID, targetID)
	if !errors.Is(err, services.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestFaceEnrollmentService_Snapshot_OwnCaptureAllowed(t *testing.T) {
	userID := uuid.New()
	path := "snapshots/self.jpg"

	mockRepo := &mockUserRepo{
		getByIDFunc: func(id uuid.UUID) (*models.User, error) {
			return &models.User{ID: userID, Role: models.RoleStudent, FaceSnapshotPath: &path}, nil
		},
	}
	store := &mockSnapshotStore{
		openFunc: func(ctx context.Context, loc *storage.Location) (*storage.Result, error) {
			return &storage.Result{Reader: io.NopCloser(strings.NewReader("x")), Size: 1}, nil
		},
	}

	svc := services.NewFaceEnrollmentService(mockRepo, store)

	result, err := svc.Snapshot(context.Background(), userID, userID)
	if err != nil {
		t.Fatalf("expected students to fetch their own capture, got %v", err)
	}
	result.Reader.Close()
}

func TestFaceEnrollmentService_Snapshot_NoneOnFile(t *testing.T) {
	userID := uuid.New()
	mockRepo := &mockUserRepo{
		getByIDFunc: func(id uuid.UUID) (*models.User, error) {
			return &models.User{ID: userID, Role: models.RoleStudent}, nil
		},
	}

	svc := services.NewFaceEnrollmentService(mockRepo, &mockSnapshotStore{})

	_, err := svc.Snapshot(context.Background(), userID, userID)
	if !errors.Is(err, services.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}
