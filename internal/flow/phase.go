package flow

import "time"

// PhaseKind enumerates the states of the simulated verification timer.
type PhaseKind int

const (
	PhaseNotStarted PhaseKind = iota
	PhaseRunning
	PhaseCompleted
)

// String returns the lowercase name of the phase kind.
func (k PhaseKind) String() string {
	switch k {
	case PhaseNotStarted:
		return "not_started"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Phase is the verification sub-state. Elapsed never exceeds Total.
type Phase struct {
	Kind    PhaseKind
	Elapsed time.Duration
	Total   time.Duration
}

// Fraction reports progress in [0, 1].
func (p Phase) Fraction() float64 {
	switch p.Kind {
	case PhaseCompleted:
		return 1
	case PhaseRunning:
		if p.Total <= 0 {
			return 1
		}
		f := float64(p.Elapsed) / float64(p.Total)
		if f < 0 {
			return 0
		}
		if f > 1 {
			return 1
		}
		return f
	default:
		return 0
	}
}

// Remaining returns the time left before completion.
func (p Phase) Remaining() time.Duration {
	if p.Kind != PhaseRunning {
		return 0
	}
	return p.Total - p.Elapsed
}
