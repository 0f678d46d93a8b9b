// Package mode implements the conversation mode state machine. Transitions
// are never rejected; every Set is recorded into an append-only transition
// log that the stability monitor inspects for oscillation. Update implements
// the context-aware transition table driven by classifier output.
package mode

import (
	"time"

	"github.com/hupe1980/personamesh/core"
)

// Manager owns the current mode of one session. It has no terminal state and
// runs for the lifetime of the session. Single-owner; callers serialize
// turns.
type Manager struct {
	current core.Mode
	log     []core.ModeTransition
	updates int
}

// NewManager constructs a Manager starting in initial, defaulting to
// greeting when initial is not a valid mode.
func NewManager(initial core.Mode) *Manager {
	if !initial.IsValid() {
		initial = core.ModeGreeting
	}
	return &Manager{current: initial}
}

// Current returns the current mode.
func (m *Manager) Current() core.Mode { return m.current }

// Set updates the mode unconditionally and records the transition. No
// transition is rejected, but every transition is logged.
func (m *Manager) Set(next core.Mode, reason string) core.ModeTransition {
	t := core.ModeTransition{From: m.current, To: next, Reason: reason, At: time.Now().UTC()}
	m.log = append(m.log, t)
	m.current = next
	return t
}

// Log returns a copy of the transition log.
func (m *Manager) Log() []core.ModeTransition {
	out := make([]core.ModeTransition, len(m.log))
	copy(out, m.log)
	return out
}

// RestoreLog replaces the transition log (session snapshot loading).
func (m *Manager) RestoreLog(log []core.ModeTransition) {
	m.log = append([]core.ModeTransition(nil), log...)
	if n := len(m.log); n > 0 {
		m.current = m.log[n-1].To
		m.updates = n
	}
}

// Update applies the context-aware transition table to the classifier result
// and returns the resulting mode with the transition reason. A mode change
// goes through Set and is therefore logged; staying in place is not logged.
//
// The table mirrors the conversational policy: high-confidence greeting and
// task intents move between greeting/onboarding/task, explicit reflection or
// error intents divert, and ambiguity or low confidence always falls back to
// reflection.
func (m *Manager) Update(result core.ClassifierResult) (core.Mode, string) {
	prev := m.current
	firstTurn := m.updates == 0
	m.updates++
	intent := result.Intent
	confidence := result.Confidence
	ambiguous := result.Signals.Ambiguous
	lowConfidence := ambiguous || confidence < 0.5

	next := prev
	reason := ""

	switch prev {
	case core.ModeGreeting:
		switch {
		case firstTurn:
			// Very first turn stays in greeting regardless of intent.
			next, reason = core.ModeGreeting, "first turn: remain in greeting"
		case intent == "greeting" && confidence >= 0.7:
			next, reason = core.ModeOnboarding, "greeting detected, transitioning to onboarding"
		case intent == "task" && confidence >= 0.7:
			next, reason = core.ModeTask, "task intent detected, entering task mode"
		case lowConfidence:
			next, reason = core.ModeReflection, "ambiguous or low-confidence message, entering reflection"
		}
	case core.ModeOnboarding:
		switch {
		case intent == "task" && confidence >= 0.7:
			next, reason = core.ModeTask, "onboarding complete, task intent detected"
		case intent == "greeting" && confidence >= 0.7:
			next, reason = core.ModeOnboarding, "still onboarding (greeting loop)"
		case lowConfidence:
			next, reason = core.ModeReflection, "ambiguous or low-confidence during onboarding, entering reflection"
		}
	case core.ModeTask:
		switch {
		case intent == "reflection":
			next, reason = core.ModeReflection, "reflection intent detected, exiting task mode"
		case intent == "greeting" && confidence >= 0.7:
			next, reason = core.ModeGreeting, "greeting detected, returning to greeting mode"
		case intent == "error" || result.Signals.Error || confidence < 0.3:
			next, reason = core.ModeErrorRecovery, "error or very low confidence, entering error-recovery"
		case intent == "task" && confidence >= 0.7:
			next, reason = core.ModeTask, "continue task mode (multi-turn)"
		case lowConfidence:
			next, reason = core.ModeReflection, "ambiguous or low-confidence during task, entering reflection"
		}
	case core.ModeReflection:
		switch {
		case intent == "task" && confidence >= 0.7:
			next, reason = core.ModeTask, "recovered from reflection, task intent detected"
		case intent == "greeting" && confidence >= 0.7:
			next, reason = core.ModeGreeting, "greeting detected, returning to greeting mode"
		case intent == "onboarding":
			next, reason = core.ModeOnboarding, "onboarding intent detected"
		case lowConfidence:
			next, reason = core.ModeReflection, "remain in reflection (ambiguous/low-confidence)"
		}
	case core.ModeErrorRecovery:
		switch {
		case intent == "greeting" && confidence >= 0.7:
			next, reason = core.ModeGreeting, "recovered from error, greeting detected"
		case intent == "task" && confidence >= 0.7:
			next, reason = core.ModeTask, "recovered from error, task intent detected"
		}
	}

	// Default fallback when no rule moved us and the signal is weak.
	if next == prev && lowConfidence && reason == "" {
		next, reason = core.ModeReflection, "default fallback: ambiguous or low-confidence"
	}

	if next != prev {
		m.Set(next, reason)
	}
	return next, reason
}
