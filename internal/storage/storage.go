package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Sentinel errors to help callers distinguish failure reasons.
var (
	ErrInvalidSnapshot = errors.New("storage: invalid snapshot")
	ErrInvalidLocation = errors.New("storage: invalid location")
)

// Snapshot is the enrollment capture sent to a storage backend. The
// image exists so an instructor can review who a descriptor actually
// belongs to; it is never used for matching.
type Snapshot struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Location identifies where a snapshot lives inside the backend.
type Location struct {
	Path string
	URL  string
}

// Result bundles the stream returned by a storage backend and some metadata.
type Result struct {
	Reader      io.ReadCloser
	ContentType string
	Size        int64
}

// SnapshotStore describes the operations supported by every snapshot
// backend we implement.
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) (*Location, error)
	Open(ctx context.Context, loc *Location) (*Result, error)
	Delete(ctx context.Context, loc *Location) error
}

// ValidateSnapshot performs a light validation before delegating to providers.
func ValidateSnapshot(snap *Snapshot) error {
	if snap == nil || snap.Reader == nil {
		return fmt.Errorf("%w: missing data stream", ErrInvalidSnapshot)
	}
	if snap.Name == "" {
		return fmt.Errorf("%w: missing snapshot name", ErrInvalidSnapshot)
	}
	return nil
}

// ValidateLocation ensures we only interact with safe locations.
func ValidateLocation(loc *Location) error {
	if loc == nil {
		return ErrInvalidLocation
	}
	if loc.Path == "" {
		return fmt.Errorf("%w: missing path", ErrInvalidLocation)
	}
	return nil
}
