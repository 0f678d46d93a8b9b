package core

import "time"

// Mode is the agent's current conversational stance. The set is closed; the
// mode state machine has no terminal state and runs for the lifetime of a
// session.
type Mode string

// The full mode enumeration. ModeNone is the zero value used where a mode is
// optional (e.g. MetaSignals.RecommendedNextMode).
const (
	ModeNone          Mode = ""
	ModeGreeting      Mode = "greeting"
	ModeOnboarding    Mode = "onboarding"
	ModeTask          Mode = "task"
	ModeReflection    Mode = "reflection"
	ModeErrorRecovery Mode = "error-recovery"
	ModeFallback      Mode = "fallback"
	ModeDiagnostic    Mode = "diagnostic"
)

// Modes lists every valid mode in declaration order.
var Modes = []Mode{
	ModeGreeting,
	ModeOnboarding,
	ModeTask,
	ModeReflection,
	ModeErrorRecovery,
	ModeFallback,
	ModeDiagnostic,
}

// IsValid reports whether m is a member of the closed mode set.
func (m Mode) IsValid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (m Mode) String() string { return string(m) }

// ParseMode returns the Mode matching s, or ModeNone when s names no known
// mode. Callers deciding a default should check IsValid on the result.
func ParseMode(s string) Mode {
	m := Mode(s)
	if m.IsValid() {
		return m
	}
	return ModeNone
}

// ModeTransition records one mode change: previous mode, new mode, the
// human-readable reason and the wall-clock time it happened. Transition logs
// are append-only; the stability monitor inspects recent entries to detect
// oscillation.
type ModeTransition struct {
	From   Mode      `json:"from"`
	To     Mode      `json:"to"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}
