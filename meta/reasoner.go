// Package meta derives uncertainty, contradiction and missing-information
// diagnostics from classifier output, handler output and the short-term
// memory snapshot. Analyze is a pure function of its inputs except for the
// append-only trace kept for diagnostics.
package meta

import (
	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/memory"
)

// Reasoner produces MetaSignals once per turn. Rules are applied
// independently and cumulatively; later rules append to the summary rather
// than replacing it.
type Reasoner struct {
	trace []core.MetaSignals
}

// NewReasoner constructs an empty Reasoner.
func NewReasoner() *Reasoner { return &Reasoner{} }

// Analyze evaluates the rule set against the classifier result, the optional
// handler response and the optional memory snapshot, appends the result to
// the trace and returns it.
func (r *Reasoner) Analyze(classifier core.ClassifierResult, handlerOut *core.Envelope, snapshot *memory.Snapshot) core.MetaSignals {
	signals := core.MetaSignals{}

	if classifier.Confidence < 0.5 || classifier.Signals.Ambiguous {
		signals.UncertaintyLevel = 1.0 - classifier.Confidence
		signals.RecommendedNextMode = core.ModeReflection
		signals.MetaSummary += "Uncertainty detected. "
	}
	if classifier.Signals.Contradiction {
		signals.Contradiction = true
		signals.RecommendedNextMode = core.ModeErrorRecovery
		signals.MetaSummary += "Contradiction detected. "
	}
	if classifier.Signals.MissingInfo {
		signals.MissingInformation = true
		signals.RecommendedNextMode = core.ModeOnboarding
		signals.MetaSummary += "Missing information detected. "
	}
	if snapshot != nil && len(snapshot.ModeTransitions) > 2 {
		recent := snapshot.ModeTransitions[len(snapshot.ModeTransitions)-3:]
		if distinctModes(recent) > 2 {
			signals.UnstableState = true
			signals.RecommendedNextMode = core.ModeReflection
			signals.MetaSummary += "Unstable/confused state detected. "
		}
	}
	if handlerOut != nil {
		if handlerOut.Metadata.Contradiction {
			signals.Contradiction = true
			signals.RecommendedNextMode = core.ModeErrorRecovery
			signals.MetaSummary += "Handler contradiction detected. "
		}
		if handlerOut.Metadata.MissingInformation {
			signals.MissingInformation = true
			signals.RecommendedNextMode = core.ModeOnboarding
			signals.MetaSummary += "Handler missing information detected. "
		}
	}

	r.trace = append(r.trace, signals)
	return signals
}

// Trace returns a copy of the append-only signal trace.
func (r *Reasoner) Trace() []core.MetaSignals {
	out := make([]core.MetaSignals, len(r.trace))
	copy(out, r.trace)
	return out
}

func distinctModes(transitions []core.ModeTransition) int {
	seen := map[core.Mode]struct{}{}
	for _, t := range transitions {
		seen[t.To] = struct{}{}
	}
	return len(seen)
}
