package nowcast

import (
	"time"

	"github.com/regnkort/nowcast/internal/monitoring"
)

// EventKind labels the progress events the engine emits while it works.
type EventKind string

const (
	// EventPairEstimated: motion was recovered for one consecutive frame pair.
	EventPairEstimated EventKind = "pair_estimated"
	// EventPairSkipped: a frame pair failed motion estimation and was
	// dropped from the aggregate. Err carries the cause.
	EventPairSkipped EventKind = "pair_skipped"
	// EventVelocityAggregated: the window's pairwise fields were folded into
	// the run's single velocity field.
	EventVelocityAggregated EventKind = "velocity_aggregated"
	// EventStepCompleted: one forecast step was advected and evolved.
	EventStepCompleted EventKind = "step_completed"
)

// Event is a structured progress notification. Only the fields relevant to
// the Kind are populated.
type Event struct {
	Kind EventKind

	Pair int   // pair index within the window (pair events)
	Err  error // cause (EventPairSkipped)

	PairsUsed    int     // pairs contributing to the aggregate
	PairsSkipped int     // pairs dropped from the aggregate
	MeanSpeed    float64 // mean velocity magnitude, cells/s (EventVelocityAggregated)

	Step          int       // 1-based forecast step (EventStepCompleted)
	Timestamp     time.Time // forecast valid time (EventStepCompleted)
	Confidence    float64   // confidence of the emitted frame (EventStepCompleted)
	MeanIntensity float64   // mean of the evolved grid (EventStepCompleted)
	MaxIntensity  float64   // max of the evolved grid (EventStepCompleted)
}

// EventSink receives engine progress events. Implementations must be safe to
// call from the goroutine running the forecast; the engine never calls a sink
// concurrently with itself.
type EventSink interface {
	Event(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Event(Event) {}

// LogSink forwards events to the monitoring logger as terse single lines.
type LogSink struct{}

func (LogSink) Event(e Event) {
	switch e.Kind {
	case EventPairEstimated:
		monitoring.Logf("[nowcast] pair %d estimated", e.Pair)
	case EventPairSkipped:
		monitoring.Logf("[nowcast] pair %d skipped: %v", e.Pair, e.Err)
	case EventVelocityAggregated:
		monitoring.Logf("[nowcast] velocity aggregated from %d pairs (%d skipped), mean speed %.4f cells/s",
			e.PairsUsed, e.PairsSkipped, e.MeanSpeed)
	case EventStepCompleted:
		monitoring.Logf("[nowcast] step %d complete: mean %.1f max %.1f",
			e.Step, e.MeanIntensity, e.MaxIntensity)
	default:
		monitoring.Logf("[nowcast] %s", e.Kind)
	}
}

// sinkOrNop normalises a possibly-nil sink.
func sinkOrNop(s EventSink) EventSink {
	if s == nil {
		return NopSink{}
	}
	return s
}
