package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kalimx03/warrior-track-new/internal/config"
	"github.com/kalimx03/warrior-track-new/internal/metrics"
	"github.com/kalimx03/warrior-track-new/internal/models"
	"github.com/kalimx03/warrior-track-new/internal/repositories"
)

// RotationScheduler is the singleton background task that re-mints
// THEORY PINs on a fixed cadence. PINs are short and human-typed, so
// they have to be rotated server-side to bound the replay window; LAB
// tokens rotate purely by recomputation and are never touched here.
type RotationScheduler struct {
	sessionRepo repositories.SessionRepository
	interval    time.Duration

	// Now and MintPIN are swappable for tests.
	Now     func() time.Time
	MintPIN func() (string, error)
}

func New(sessionRepo repositories.SessionRepository, cfg *config.Config) (*RotationScheduler, error) {
	interval, err := cfg.Rotation.GetInterval()
	if err != nil {
		return nil, fmt.Errorf("invalid rotation interval: %w", err)
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &RotationScheduler{
		sessionRepo: sessionRepo,
		interval:    interval,
		Now:         time.Now,
		MintPIN:     models.GeneratePIN,
	}, nil
}

// Run blocks until ctx is done, executing one rotation pass per tick.
// Passes never overlap: the single loop goroutine finishes a pass
// before it can receive the next tick, and ticks that fire mid-pass
// coalesce into at most one pending tick.
func (s *RotationScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("rotation scheduler started (interval %s)", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("rotation scheduler stopped")
			return
		case <-ticker.C:
			if rotated, err := s.RunOnce(); err != nil {
				log.Printf("rotation pass failed: %v", err)
			} else if rotated > 0 {
				log.Printf("rotated %d theory PIN(s)", rotated)
			}
		}
	}
}

// RunOnce scans active, unlocked THEORY sessions whose code is older
// than the rotation interval and mints each a fresh PIN.
func (s *RotationScheduler) RunOnce() (int, error) {
	nowMillis := s.Now().UnixMilli()
	cutoff := nowMillis - s.interval.Milliseconds()

	stale, err := s.sessionRepo.ListStaleTheory(cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale sessions: %w", err)
	}

	rotated := 0
	for _, session := range stale {
		pin, err := s.MintPIN()
		if err != nil {
			return rotated, fmt.Errorf("mint pin: %w", err)
		}
		if err := s.sessionRepo.UpdateCode(session.ID, pin, nowMillis); err != nil {
			return rotated, fmt.Errorf("update session %s: %w", session.ID, err)
		}
		rotated++
		metrics.PINRotations.Inc()
	}

	metrics.RotationPasses.Inc()
	return rotated, nil
}
