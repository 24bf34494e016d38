package metrics

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_sessions_created_total",
		Help: "Sessions created, by session type.",
	}, []string{"type"})

	MarkAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_mark_attempts_total",
		Help: "Attendance verification attempts, by outcome.",
	}, []string{"outcome"})

	PINRotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_pin_rotations_total",
		Help: "THEORY PINs rotated by the scheduler.",
	})

	RotationPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_rotation_passes_total",
		Help: "Completed rotation scheduler passes.",
	})
)

// Serve exposes /metrics on its own port so the scrape surface stays
// off the public listener.
func Serve(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
}
