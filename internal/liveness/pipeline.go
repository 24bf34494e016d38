package liveness

import (
	"context"
	"errors"
	"time"
)

// Frame is one sampled camera frame reduced to what the pipeline
// needs: eye landmarks for the blink check and the face descriptor for
// the identity check that follows a completed blink.
type Frame struct {
	FaceDetected bool
	LeftEye      Eye
	RightEye     Eye
	Descriptor   []float64
}

// FrameSource produces frames from a live camera. Next blocks until a
// frame is available or ctx is done. Implementations must release the
// camera in Close.
type FrameSource interface {
	Next(ctx context.Context) (*Frame, error)
	Close() error
}

// ErrSourceClosed is returned by sources after Close.
var ErrSourceClosed = errors.New("liveness: frame source closed")

// DefaultSampleInterval is the fixed polling cadence of the pipeline.
const DefaultSampleInterval = 200 * time.Millisecond

// Pipeline drives blink detection against a frame source at a fixed
// sampling interval. It owns the source: when Run returns for any
// reason, the source is closed and the camera released. Canceling ctx
// is the only way an unsuccessful attempt ends; frames without a face
// are no-signal ticks, not failures.
type Pipeline struct {
	src      FrameSource
	det      *Detector
	interval time.Duration
}

func NewPipeline(src FrameSource, det *Detector, interval time.Duration) *Pipeline {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &Pipeline{src: src, det: det, interval: interval}
}

// Run samples frames until a blink completes and returns the frame
// that completed it, descriptor included, so the caller can hand it to
// the face matcher. On cancellation it returns ctx.Err().
func (p *Pipeline) Run(ctx context.Context) (*Frame, error) {
	defer p.src.Close()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		frame, err := p.src.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			// Transient capture failure: treat like a missing face and
			// keep sampling.
			p.det.NoSignal()
			continue
		}
		if frame == nil || !frame.FaceDetected {
			p.det.NoSignal()
			continue
		}

		if p.det.Observe(AverageEAR(frame.LeftEye, frame.RightEye)) == BlinkComplete {
			return frame, nil
		}
	}
}
