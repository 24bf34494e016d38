package liveness

// State of the blink detection machine.
type State int

const (
	// WaitingForClose is the initial state: no sustained eye closure
	// observed yet.
	WaitingForClose State = iota
	// ClosedConfirmed means the eyes stayed closed long enough that a
	// re-opening completes the blink.
	ClosedConfirmed
	// BlinkComplete is terminal: a genuine blink was observed.
	BlinkComplete
)

func (s State) String() string {
	switch s {
	case WaitingForClose:
		return "WAITING_FOR_CLOSE"
	case ClosedConfirmed:
		return "CLOSED_CONFIRMED"
	case BlinkComplete:
		return "BLINK_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

const (
	// DefaultEARThreshold separates open from closed eyes.
	DefaultEARThreshold = 0.25
	// DefaultMinClosedFrames is how many consecutive below-threshold
	// samples confirm a closure. Requiring two filters out single-frame
	// landmark noise.
	DefaultMinClosedFrames = 2
)

// Detector consumes EAR samples and detects a genuine blink. A static
// photo never produces the close-then-open sequence, which is the
// point. The zero Detector is not usable; construct with NewDetector.
type Detector struct {
	threshold       float64
	minClosedFrames int

	state     State
	closedRun int
}

func NewDetector(threshold float64, minClosedFrames int) *Detector {
	if threshold <= 0 {
		threshold = DefaultEARThreshold
	}
	if minClosedFrames <= 0 {
		minClosedFrames = DefaultMinClosedFrames
	}
	return &Detector{
		threshold:       threshold,
		minClosedFrames: minClosedFrames,
	}
}

// Observe feeds one EAR sample and returns the resulting state.
func (d *Detector) Observe(ear float64) State {
	switch d.state {
	case WaitingForClose:
		if ear < d.threshold {
			d.closedRun++
			if d.closedRun >= d.minClosedFrames {
				d.state = ClosedConfirmed
			}
		} else {
			d.closedRun = 0
		}
	case ClosedConfirmed:
		if ear >= d.threshold {
			d.state = BlinkComplete
		}
	case BlinkComplete:
		// terminal
	}
	return d.state
}

// NoSignal records a tick where no face was visible. It is not an
// error and not an eye closure; the closure run resets so a face
// popping in and out cannot fake the sustained-close requirement.
func (d *Detector) NoSignal() State {
	if d.state == WaitingForClose {
		d.closedRun = 0
	}
	return d.state
}

func (d *Detector) State() State {
	return d.state
}

// Reset returns the detector to its initial state for a fresh attempt.
func (d *Detector) Reset() {
	d.state = WaitingForClose
	d.closedRun = 0
}
