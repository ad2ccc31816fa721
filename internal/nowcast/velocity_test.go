package nowcast

import (
	"errors"
	"testing"
	"time"
)

// recordSink captures events for assertions.
type recordSink struct {
	events []Event
}

func (s *recordSink) Event(e Event) { s.events = append(s.events, e) }

func (s *recordSink) count(kind EventKind) int {
	n := 0
	for _, e := range s.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (s *recordSink) find(kind EventKind) (Event, bool) {
	for _, e := range s.events {
		if e.Kind == kind {
			return e, true
		}
	}
	return Event{}, false
}

func TestAggregate_TooFewFrames(t *testing.T) {
	agg := NewVelocityAggregator(NewMotionEstimator(DefaultMotionConfig()), 10, nil)

	_, err := agg.Aggregate([]Frame{plaidFrame(frameT0, 40, 40, 0, 0)})
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for single frame, got %v", err)
	}
}

func TestAggregate_AllPairsFail(t *testing.T) {
	frames := []Frame{
		uniformFrame(frameT0, 40, 40, 100),
		uniformFrame(frameT0.Add(10*time.Minute), 40, 40, 100),
		uniformFrame(frameT0.Add(20*time.Minute), 40, 40, 100),
	}
	sink := &recordSink{}
	agg := NewVelocityAggregator(NewMotionEstimator(DefaultMotionConfig()), 10, sink)

	_, err := agg.Aggregate(frames)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData when every pair fails, got %v", err)
	}
	if got := sink.count(EventPairSkipped); got != 2 {
		t.Errorf("skip events = %d, want 2", got)
	}
}

func TestAggregate_SkipsFailedPairAndKeepsRest(t *testing.T) {
	// The first pair has a uniform previous frame and must fail; the second
	// pair carries clean motion.
	frames := []Frame{
		uniformFrame(frameT0, 60, 60, 100),
		plaidFrame(frameT0.Add(10*time.Minute), 60, 60, 0, 0),
		plaidFrame(frameT0.Add(20*time.Minute), 60, 60, 1.2, 2.4),
	}
	sink := &recordSink{}
	agg := NewVelocityAggregator(NewMotionEstimator(DefaultMotionConfig()), 10, sink)

	field, err := agg.Aggregate(frames)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if got := sink.count(EventPairSkipped); got != 1 {
		t.Errorf("skip events = %d, want 1", got)
	}
	agged, ok := sink.find(EventVelocityAggregated)
	if !ok {
		t.Fatal("missing velocity_aggregated event")
	}
	if agged.PairsUsed != 1 || agged.PairsSkipped != 1 {
		t.Errorf("pairs used/skipped = %d/%d, want 1/1", agged.PairsUsed, agged.PairsSkipped)
	}

	i := 30*60 + 30
	if relErr(field.U[i], 2.4/600) > 0.15 {
		t.Errorf("U at centre = %v, want %v", field.U[i], 2.4/600)
	}
}

func TestAggregate_AveragesPairs(t *testing.T) {
	// Two pairs with different drift rates: 2.4 then 1.2 cells per step.
	frames := []Frame{
		plaidFrame(frameT0, 60, 60, 0, 0),
		plaidFrame(frameT0.Add(10*time.Minute), 60, 60, 0, 2.4),
		plaidFrame(frameT0.Add(20*time.Minute), 60, 60, 0, 3.6),
	}
	agg := NewVelocityAggregator(NewMotionEstimator(DefaultMotionConfig()), 10, nil)

	field, err := agg.Aggregate(frames)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	want := (2.4 + 1.2) / 2 / 600
	i := 30*60 + 30
	if relErr(field.U[i], want) > 0.15 {
		t.Errorf("mean U at centre = %v, want %v within 15%%", field.U[i], want)
	}
}

func TestAggregate_WindowLimitsPairs(t *testing.T) {
	frames := plaidSequence(12, 60, 60, 0, 1.0, 10*time.Minute)
	sink := &recordSink{}
	agg := NewVelocityAggregator(NewMotionEstimator(DefaultMotionConfig()), 10, sink)

	if _, err := agg.Aggregate(frames); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	agged, ok := sink.find(EventVelocityAggregated)
	if !ok {
		t.Fatal("missing velocity_aggregated event")
	}
	// 12 frames windowed to 10 leaves 9 consecutive pairs.
	if agged.PairsUsed != 9 {
		t.Errorf("pairs used = %d, want 9", agged.PairsUsed)
	}
}

func TestVelocityFieldMeanSpeed(t *testing.T) {
	f := NewVelocityField(1, 2)
	f.U[0], f.V[0] = 3, 4 // magnitude 5
	f.U[1], f.V[1] = 0, 0

	if got := f.MeanSpeed(); got != 2.5 {
		t.Errorf("MeanSpeed = %v, want 2.5", got)
	}
}
