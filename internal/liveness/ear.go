package liveness

import "math"

// Point is a 2D facial landmark coordinate.
type Point struct {
	X float64
	Y float64
}

func (p Point) distanceTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Eye is the six-landmark contour of one eye, ordered the way facial
// landmark models emit them: p1 and p4 are the horizontal corners, p2/p3
// the upper lid, p6/p5 the lower lid.
type Eye [6]Point

// AspectRatio computes the eye aspect ratio (EAR): the two vertical
// eyelid distances over twice the horizontal eye width. Open eyes sit
// around 0.3; a closed eye drops well below 0.25.
func (e Eye) AspectRatio() float64 {
	vertical := e[1].distanceTo(e[5]) + e[2].distanceTo(e[4])
	horizontal := e[0].distanceTo(e[3])
	if horizontal == 0 {
		return 0
	}
	return vertical / (2 * horizontal)
}

// AverageEAR averages the aspect ratio across both eyes, which smooths
// over per-eye landmark jitter.
func AverageEAR(left, right Eye) float64 {
	return (left.AspectRatio() + right.AspectRatio()) / 2
}
