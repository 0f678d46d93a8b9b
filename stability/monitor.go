// Package stability scores session health from bounded rolling windows of
// recent modes, uncertainty readings and failure counters. The resulting
// StabilitySignals drive the self-correction engine and are retained in an
// append-only event log for diagnostics.
package stability

import (
	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/memory"
)

const (
	modeWindow        = 10
	uncertaintyWindow = 5
	overloadThreshold = 10
)

// Monitor tracks rolling session health. Single-owner per session; callers
// serialize turns.
type Monitor struct {
	modeHistory        []core.Mode
	uncertaintyHistory []float64
	contradictions     int
	errorRecoveries    int
	memoryOverload     bool
	score              float64
	events             []core.StabilitySignals
}

// NewMonitor constructs a Monitor with a perfect starting score.
func NewMonitor() *Monitor { return &Monitor{score: 1.0} }

// Check ingests this turn's mode, meta signals and memory snapshot, computes
// the stability event, appends it to the event log and returns it.
//
// Flags:
//   - runaway_loop: last 4 modes contain more than 2 distinct values
//   - excessive_uncertainty: at least 3 of the last 5 readings exceed 0.5
//   - repeated_contradiction: cumulative contradiction count reached 2
//   - repeated_error_recovery: error-recovery mode seen at least twice
//   - memory_overload: user-message window exceeds 10 entries
//
// The score starts at 1.0 each turn with independent penalties (-0.3, -0.3,
// -0.2, -0.2, -0.2) and is floored at 0.0; the floor, not re-normalization,
// prevents negative scores.
func (m *Monitor) Check(mode core.Mode, signals core.MetaSignals, snapshot memory.Snapshot) core.StabilitySignals {
	event := core.StabilitySignals{}

	m.modeHistory = append(m.modeHistory, mode)
	if len(m.modeHistory) > modeWindow {
		m.modeHistory = m.modeHistory[1:]
	}
	if len(m.modeHistory) >= 4 && distinct(m.modeHistory[len(m.modeHistory)-4:]) > 2 {
		event.RunawayLoop = true
	}

	m.uncertaintyHistory = append(m.uncertaintyHistory, signals.UncertaintyLevel)
	if len(m.uncertaintyHistory) > uncertaintyWindow {
		m.uncertaintyHistory = m.uncertaintyHistory[1:]
	}
	high := 0
	for _, u := range m.uncertaintyHistory {
		if u > 0.5 {
			high++
		}
	}
	if high >= 3 {
		event.ExcessiveUncertainty = true
	}

	if signals.Contradiction {
		m.contradictions++
	}
	if m.contradictions >= 2 {
		event.RepeatedContradiction = true
	}

	if mode == core.ModeErrorRecovery {
		m.errorRecoveries++
	}
	if m.errorRecoveries >= 2 {
		event.RepeatedErrorRecovery = true
	}

	if len(snapshot.UserMessages) > overloadThreshold {
		m.memoryOverload = true
		event.MemoryOverload = true
	}

	score := 1.0
	if event.RunawayLoop {
		score -= 0.3
	}
	if event.ExcessiveUncertainty {
		score -= 0.3
	}
	if event.RepeatedContradiction {
		score -= 0.2
	}
	if event.RepeatedErrorRecovery {
		score -= 0.2
	}
	if event.MemoryOverload {
		score -= 0.2
	}
	if score < 0 {
		score = 0
	}
	m.score = score
	event.StabilityScore = score

	m.events = append(m.events, event)
	return event
}

// ResetCounters clears the contradiction and error-recovery counters and the
// overload flag without touching the history windows. It is invoked
// explicitly, never automatically.
func (m *Monitor) ResetCounters() {
	m.contradictions = 0
	m.errorRecoveries = 0
	m.memoryOverload = false
}

// Score returns the most recently computed stability score.
func (m *Monitor) Score() float64 { return m.score }

// Events returns a copy of the append-only event log.
func (m *Monitor) Events() []core.StabilitySignals {
	out := make([]core.StabilitySignals, len(m.events))
	copy(out, m.events)
	return out
}

func distinct(modes []core.Mode) int {
	seen := map[core.Mode]struct{}{}
	for _, md := range modes {
		seen[md] = struct{}{}
	}
	return len(seen)
}
