package facematch

import (
	"errors"
	"fmt"
	"math"
)

// DescriptorLen is the dimensionality of the face embeddings produced
// at enrollment and by the live capture.
const DescriptorLen = 128

// DefaultThreshold is the maximum Euclidean distance accepted as the
// same identity. Face-embedding literature treats 0.6 as "probably the
// same person"; this gate controls access, so it is tightened to 0.5.
const DefaultThreshold = 0.5

var (
	ErrBadDescriptor = errors.New("facematch: descriptor must have 128 dimensions")
	// ErrNoMatch means both descriptors were valid and the distance
	// exceeded the threshold: the live face is not the enrolled person.
	ErrNoMatch = errors.New("facematch: face does not match enrollment")
)

// Outcome is the result of a single comparison. Enrolled=false marks
// the degraded path: a live face was present, but no stored descriptor
// existed, so identity could not be checked. Callers must surface that
// as "unverified identity", never as a verified match.
type Outcome struct {
	Distance float64
	Verified bool
	Enrolled bool
}

type Matcher struct {
	threshold float64
}

func New(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Distance returns the Euclidean norm of the elementwise difference of
// two descriptors.
func Distance(a, b []float64) (float64, error) {
	if len(a) != DescriptorLen || len(b) != DescriptorLen {
		return 0, fmt.Errorf("%w: got %d and %d", ErrBadDescriptor, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Match compares a live descriptor against the stored enrollment. A
// missing enrollment is not an error: the outcome comes back
// Enrolled=false and the caller decides how to degrade.
func (m *Matcher) Match(live, stored []float64) (Outcome, error) {
	if len(stored) == 0 {
		return Outcome{Enrolled: false}, nil
	}
	dist, err := Distance(live, stored)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Distance: dist,
		Verified: dist < m.threshold,
		Enrolled: true,
	}, nil
}
