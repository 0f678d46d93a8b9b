package core

// Signals is the labeled flag bundle produced by the external classifier
// alongside intent and confidence.
type Signals struct {
	Ambiguous     bool `json:"ambiguous,omitempty"`
	Contradiction bool `json:"contradiction,omitempty"`
	MissingInfo   bool `json:"missing_info,omitempty"`
	Error         bool `json:"error,omitempty"`
}

// ClassifierResult is the labeled output of the external intent classifier
// for one user message. PersonaMesh treats classification as an external
// capability; the pipeline only consumes this bundle.
type ClassifierResult struct {
	Intent     string  `json:"predicted_intent"`
	Confidence float64 `json:"confidence"`
	Signals    Signals `json:"signals"`
}

// Classifier labels a raw user message. Implementations must be
// deterministic per message for a given internal state; the pipeline calls
// Classify exactly once per turn.
type Classifier interface {
	Classify(userMessage string) ClassifierResult
}

// FlowSignals are the per-turn behavioral booleans computed by the
// conversation flow engine. They are recomputed every turn and never
// persisted beyond it.
type FlowSignals struct {
	ShouldAskQuestion          bool   `json:"should_ask_question"`
	ShouldContinuePlan         bool   `json:"should_continue_plan"`
	ShouldPausePlan            bool   `json:"should_pause_plan"`
	ShouldReflect              bool   `json:"should_reflect"`
	ShouldSummarize            bool   `json:"should_summarize"`
	ShouldRequestClarification bool   `json:"should_request_clarification"`
	Reason                     string `json:"flow_reason"`
}

// MetaSignals are derived uncertainty / contradiction / missing-info
// diagnostics feeding both flow decisions and self-correction. Stability is
// populated by the cognitive loop after the stability monitor runs so the
// self-correction engine consumes a single bundle.
type MetaSignals struct {
	UncertaintyLevel    float64           `json:"uncertainty_level"`
	Contradiction       bool              `json:"contradiction"`
	MissingInformation  bool              `json:"missing_information"`
	UnstableState       bool              `json:"unstable_state"`
	RecommendedNextMode Mode              `json:"recommended_next_mode,omitempty"`
	MetaSummary         string            `json:"meta_summary"`
	Stability           *StabilitySignals `json:"stability_signals,omitempty"`
}

// StabilitySignals score session health from bounded rolling windows of
// modes, uncertainty readings and failure counters. StabilityScore is always
// within [0,1].
type StabilitySignals struct {
	RunawayLoop           bool    `json:"runaway_loop"`
	ExcessiveUncertainty  bool    `json:"excessive_uncertainty"`
	RepeatedContradiction bool    `json:"repeated_contradiction"`
	RepeatedErrorRecovery bool    `json:"repeated_error_recovery"`
	MemoryOverload        bool    `json:"memory_overload"`
	StabilityScore        float64 `json:"stability_score"`
}

// Unstable reports whether any instability flag is raised or the score has
// dropped below the correction threshold of 0.5. The self-correction engine
// uses this as its rebuild trigger.
func (s StabilitySignals) Unstable() bool {
	return s.RunawayLoop ||
		s.ExcessiveUncertainty ||
		s.RepeatedContradiction ||
		s.RepeatedErrorRecovery ||
		s.MemoryOverload ||
		s.StabilityScore < 0.5
}
