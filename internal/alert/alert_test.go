package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run feeds a probability sequence through a fresh machine and returns the
// emitted events with their input indices.
type indexedEvent struct {
	Index int
	Type  EventType
}

func run(threshold float64, minSnoreCount int, probabilities []float32) []indexedEvent {
	sm := New(threshold, minSnoreCount)
	var events []indexedEvent
	for i, p := range probabilities {
		if ev, ok := sm.Transition(uint64(i), p); ok {
			events = append(events, indexedEvent{Index: i, Type: ev.Type})
		}
	}
	return events
}

func TestAlertRaisedAndCleared(t *testing.T) {
	// threshold=0.5, min_snore_count=3, probabilities [0.2 0.6 0.7 0.8 0.3]
	// -> AlertRaised at index 3, AlertCleared at index 4.
	events := run(0.5, 3, []float32{0.2, 0.6, 0.7, 0.8, 0.3})
	require.Len(t, events, 2)
	assert.Equal(t, indexedEvent{Index: 3, Type: AlertRaised}, events[0])
	assert.Equal(t, indexedEvent{Index: 4, Type: AlertCleared}, events[1])
}

func TestDebounce(t *testing.T) {
	// min_snore_count-1 hits followed by a miss never raises.
	events := run(0.5, 3, []float32{0.9, 0.9, 0.1})
	assert.Empty(t, events)

	// Repeated near-misses stay silent too.
	events = run(0.5, 3, []float32{0.9, 0.9, 0.1, 0.9, 0.9, 0.1, 0.9, 0.9, 0.1})
	assert.Empty(t, events)
}

func TestEdgeTriggered(t *testing.T) {
	// N consecutive hits (N > min) raise exactly one alert.
	probs := make([]float32, 10)
	for i := range probs {
		probs[i] = 0.9
	}
	events := run(0.5, 3, probs)
	require.Len(t, events, 1)
	assert.Equal(t, AlertRaised, events[0].Type)
	assert.Equal(t, 2, events[0].Index)
}

func TestClearedOnlyWhenAlerting(t *testing.T) {
	// Misses while idle emit nothing.
	events := run(0.5, 3, []float32{0.1, 0.1, 0.1})
	assert.Empty(t, events)
}

func TestThresholdIsInclusive(t *testing.T) {
	// probability == threshold counts as a hit.
	events := run(0.5, 1, []float32{0.5})
	require.Len(t, events, 1)
	assert.Equal(t, AlertRaised, events[0].Type)
}

func TestDeterminism(t *testing.T) {
	probs := []float32{0.1, 0.6, 0.7, 0.2, 0.8, 0.9, 0.95, 0.99, 0.3, 0.6, 0.6, 0.6, 0.1}
	first := run(0.5, 3, probs)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, run(0.5, 3, probs))
	}
}

func TestRepeatedCycles(t *testing.T) {
	probs := []float32{
		0.9, 0.9, 0.9, // raise at 2
		0.1, // clear at 3
		0.9, 0.9, 0.9, // raise at 6
		0.1, // clear at 7
	}
	events := run(0.5, 3, probs)
	require.Len(t, events, 4)
	assert.Equal(t, []indexedEvent{
		{2, AlertRaised},
		{3, AlertCleared},
		{6, AlertRaised},
		{7, AlertCleared},
	}, events)
}

func TestStateReporting(t *testing.T) {
	sm := New(0.5, 3)
	assert.Equal(t, Idle, sm.State())

	sm.Transition(0, 0.9)
	assert.Equal(t, Accumulating, sm.State())
	assert.Equal(t, 1, sm.Hits())
	assert.False(t, sm.IsAlerting())

	sm.Transition(1, 0.9)
	sm.Transition(2, 0.9)
	assert.Equal(t, Alerting, sm.State())
	assert.True(t, sm.IsAlerting())

	sm.Transition(3, 0.1)
	assert.Equal(t, Idle, sm.State())
	assert.Equal(t, 0, sm.Hits())
}

func TestEventMetadata(t *testing.T) {
	sm := New(0.5, 2)
	sm.Transition(10, 0.8)
	ev, ok := sm.Transition(11, 0.9)
	require.True(t, ok)

	assert.Equal(t, AlertRaised, ev.Type)
	assert.Equal(t, uint64(11), ev.WindowSeq)
	assert.Equal(t, float32(0.9), ev.Probability)
	assert.Equal(t, 2, ev.Hits)
	assert.NotZero(t, ev.ID)
	assert.False(t, ev.Time.IsZero())
}

func TestMinSnoreCountFloor(t *testing.T) {
	// A count below 1 is clamped to 1: single hit raises.
	events := run(0.5, 0, []float32{0.9})
	require.Len(t, events, 1)
	assert.Equal(t, AlertRaised, events[0].Type)
}

func TestReset(t *testing.T) {
	sm := New(0.5, 2)
	sm.Transition(0, 0.9)
	sm.Transition(1, 0.9)
	require.True(t, sm.IsAlerting())

	sm.Reset()
	assert.Equal(t, Idle, sm.State())

	// After reset the full debounce applies again.
	_, ok := sm.Transition(2, 0.9)
	assert.False(t, ok)
}
