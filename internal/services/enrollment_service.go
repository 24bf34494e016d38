package services

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/kalimx03/warrior-track-new/internal/facematch"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/repositories"
	"github.com/kalimx03/warrior-track-new/internal/storage"
)

// FaceEnrollmentService manages the per-user face descriptor that
// gates LAB attendance. Re-registration overwrites; only an admin can
// clear someone else's enrollment.
type FaceEnrollmentService struct {
	userRepo repositories.UserRepository
	store    storage.SnapshotStore
}

func NewFaceEnrollmentService(userRepo repositories.UserRepository, store storage.SnapshotStore) *FaceEnrollmentService {
	return &FaceEnrollmentService{userRepo: userRepo, store: store}
}

// EnrollInput carries the captured descriptor plus an optional webcam
// snapshot kept for instructor review.
type EnrollInput struct {
	Descriptor  []float64
	Snapshot    io.Reader
	ContentType string
	Size        int64
}

func (s *FaceEnrollmentService) Enroll(ctx context.Context, userID uuid.UUID, input EnrollInput) error {
	if len(input.Descriptor) != facematch.DescriptorLen {
		return fmt.Errorf("%w: got %d dimensions", facematch.ErrBadDescriptor, len(input.Descriptor))
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	var snapshotPath *string
	if input.Snapshot != nil && s.store != nil {
		loc, err := s.store.Save(ctx, &storage.Snapshot{
			Name:        fmt.Sprintf("%s-%s.jpg", userID, uuid.NewString()),
			ContentType: input.ContentType,
			Size:        input.Size,
			Reader:      input.Snapshot,
		})
		if err != nil {
			return fmt.Errorf("store snapshot: %w", err)
		}
		snapshotPath = &loc.Path

		// Re-registration replaces the previous capture.
		if user.FaceSnapshotPath != nil {
			_ = s.store.Delete(ctx, &storage.Location{Path: *user.FaceSnapshotPath})
		}
	}

	return s.userRepo.UpdateFaceEnrollment(userID, input.Descriptor, snapshotPath)
}

// Reset clears a user's enrollment. Admin-only.
func (s *FaceEnrollmentService) Reset(ctx context.Context, adminID, userID uuid.UUID) error {
	admin, err := s.userRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if admin == nil || admin.Role != models.RoleAdmin {
		return ErrNotAuthorized
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.FaceSnapshotPath != nil && s.store != nil {
		_ = s.store.Delete(ctx, &storage.Location{Path: *user.FaceSnapshotPath})
	}

	return s.userRepo.UpdateFaceEnrollment(userID, nil, nil)
}

// Snapshot streams the stored enrollment capture. Users can fetch
// their own; faculty and admins can fetch anyone's, so a roster entry
// can be reviewed against the face that enrolled the descriptor.
func (s *FaceEnrollmentService) Snapshot(ctx context.Context, callerID, userID uuid.UUID) (*storage.Result, error) {
	if callerID != userID {
		caller, err := s.userRepo.GetByID(callerID)
		if err != nil {
			return nil, err
		}
		if caller == nil || caller.Role == models.RoleStudent {
			return nil, ErrNotAuthorized
		}
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.FaceSnapshotPath == nil || s.store == nil {
		return nil, ErrSnapshotNotFound
	}

	return s.store.Open(ctx, &storage.Location{Path: *user.FaceSnapshotPath})
}

// Descriptor returns the stored enrollment for the verification flow;
// nil when the user never enrolled.
func (s *FaceEnrollmentService) Descriptor(userID uuid.UUID) ([]float64, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.FaceDescriptor, nil
}
