package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore persists enrollment snapshots on the local filesystem.
type LocalStore struct {
	basePath string
}

func NewLocalStore(basePath string) *LocalStore {
	return &LocalStore{basePath: basePath}
}

func (s *LocalStore) Save(ctx context.Context, snap *Snapshot) (*Location, error) {
	if err := ValidateSnapshot(snap); err != nil {
		return nil, err
	}
	relPath, err := s.safeRelativePath(snap.Name)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.basePath, filepath.Dir(relPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: mkdir failed: %w", err)
	}

	fileName := filepath.Base(relPath)
	if fileName == "." || fileName == "/" {
		fileName = uuid.NewString()
	}

	fullPath := filepath.Join(dir, fileName)
	out, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("local storage: create file failed: %w", err)
	}
	defer out.Close()

	if _, err = io.Copy(out, snap.Reader); err != nil {
		return nil, fmt.Errorf("local storage: write failed: %w", err)
	}

	return &Location{
		Path: filepath.ToSlash(fileName),
		URL:  fullPath,
	}, nil
}

func (s *LocalStore) Open(ctx context.Context, loc *Location) (*Result, error) {
	if err := ValidateLocation(loc); err != nil {
		return nil, err
	}
	relPath, err := s.safeRelativePath(loc.Path)
	if err != nil {
		return nil, err
	}

	fullPath := filepath.Join(s.basePath, relPath)
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("local storage: open failed: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("local storage: stat failed: %w", err)
	}

	return &Result{
		Reader: f,
		Size:   info.Size(),
	}, nil
}

func (s *LocalStore) Delete(ctx context.Context, loc *Location) error {
	if err := ValidateLocation(loc); err != nil {
		return err
	}
	relPath, err := s.safeRelativePath(loc.Path)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.basePath, relPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local storage: delete failed: %w", err)
	}
	return nil
}

func (s *LocalStore) safeRelativePath(name string) (string, error) {
	clean := filepath.Clean(name)
	if clean == "." || clean == string(filepath.Separator) {
		return "", fmt.Errorf("%w: empty path", ErrInvalidLocation)
	}
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("%w: path traversal detected", ErrInvalidLocation)
	}
	return clean, nil
}
