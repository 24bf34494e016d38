package services

import "errors"

// Verification and lifecycle failures surfaced to callers as a small
// closed set. Controllers map these to HTTP statuses; nothing here is
// ever allowed to crash the process.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionInactive = errors.New("session is not active")
	// ErrSessionLocked means intake is paused: the session still exists
	// and is active, but codes are neither displayed nor accepted.
	ErrSessionLocked = errors.New("session is locked")
	ErrNotEnrolled   = errors.New("student is not enrolled in this course")
	ErrCodeExpired   = errors.New("session PIN has expired")
	ErrInvalidCode   = errors.New("invalid code")
	ErrNotAuthorized = errors.New("not authorized")

	ErrCourseNotFound   = errors.New("course not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrSnapshotNotFound = errors.New("no enrollment snapshot on file")
)
