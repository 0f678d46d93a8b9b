// Package flow decides turn-level conversational behavior: whether to ask a
// question, continue or pause the plan, reflect, summarize or request
// clarification. Signals are recomputed every turn from upstream analysis
// and never persisted beyond it, except for the engine's own rolling pacing
// counters.
package flow

import (
	"strings"

	"github.com/hupe1980/personamesh/core"
)

// Input bundles everything the engine consults for one turn. HandlerOutput
// is optional (nil before dispatch on a first pass).
type Input struct {
	Classifier  core.ClassifierResult
	Meta        core.MetaSignals
	Stability   core.StabilitySignals
	PlanExists  bool
	PlanDone    bool
	CurrentMode core.Mode
	// HandlerIntent carries the previous handler's declared intent so a
	// reported clarification request counts as missing information.
	HandlerIntent string
	// ClarificationCount is the session's cumulative clarification total
	// used by the anti-nagging override.
	ClarificationCount int
}

// Engine computes FlowSignals via an ordered priority chain; the first
// matching branch wins with no fallthrough. It keeps rolling counters
// (turn count, last summary turn, last clarification turn, last mode) for
// pacing across turns.
type Engine struct {
	lastMode          core.Mode
	lastSummaryTurn   int
	lastClarification int
	turnCount         int
}

// NewEngine constructs an Engine with pacing counters at their start values.
func NewEngine() *Engine {
	return &Engine{lastSummaryTurn: -1, lastClarification: -1}
}

// TurnCount returns the number of Analyze invocations so far.
func (e *Engine) TurnCount() int { return e.turnCount }

// Analyze runs the priority chain and returns this turn's flow signals.
func (e *Engine) Analyze(in Input) core.FlowSignals {
	signals := core.FlowSignals{}

	unstable := in.Meta.UnstableState || in.Stability.StabilityScore < 0.7
	missingInfo := in.Meta.MissingInformation || containsClarification(in.HandlerIntent)

	switch {
	case e.lastMode == in.CurrentMode && in.CurrentMode == core.ModeReflection &&
		e.turnCount-e.lastSummaryTurn < 2:
		// Pacing guard: just summarized, do not reflect again immediately.
		signals.Reason = "Recently summarized, skipping."

	case in.Classifier.Intent == "reflection" || (unstable && in.CurrentMode != core.ModeReflection):
		signals.ShouldReflect = true
		signals.ShouldSummarize = true
		signals.Reason = "Reflection or instability detected."
		e.lastSummaryTurn = e.turnCount

	case missingInfo:
		signals.ShouldPausePlan = true
		signals.ShouldRequestClarification = true
		signals.ShouldAskQuestion = true
		signals.Reason = "Missing information, pausing for clarification."
		e.lastClarification = e.turnCount

	case in.PlanExists && !in.PlanDone:
		signals.ShouldContinuePlan = true
		signals.Reason = "Plan in progress, continuing."

	case in.PlanExists && in.PlanDone:
		signals.ShouldReflect = true
		signals.ShouldSummarize = true
		signals.Reason = "Plan complete, summarizing."
		e.lastSummaryTurn = e.turnCount

	default:
		signals.Reason = "Default flow."
	}

	// Anti-nagging override: too many clarifications already issued.
	if in.ClarificationCount > 2 {
		signals.ShouldRequestClarification = false
		signals.ShouldAskQuestion = false
		signals.Reason += " Too many clarifications, suppressing."
	}

	e.lastMode = in.CurrentMode
	e.turnCount++
	return signals
}

func containsClarification(intent string) bool {
	return strings.Contains(intent, "clarification")
}
