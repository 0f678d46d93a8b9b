package core

// PersonaView is the read/style surface a mode handler gets over the
// session's persona state. Handlers render through it instead of owning the
// persona context so suppression and low-intent muting stay centralized.
type PersonaView interface {
	// Style renders raw text in the persona's current voice for the given
	// mode, applying suppression / low-intent muting rules.
	Style(text string, mode Mode) string
	// ModeStyle returns the style label effective for a mode (the
	// mode-specific override or the evolving voice style).
	ModeStyle(mode Mode) string
	// VoiceStyle returns the current evolving voice style label.
	VoiceStyle() string
	// ToneModifiers returns the active tone modifiers in insertion order.
	ToneModifiers() []string
	// SignaturePhrases returns the persona's signature phrases in order.
	SignaturePhrases() []string
	// Suppressed reports whether persona shaping is globally muted.
	Suppressed() bool
}

// TaskView is the read surface a handler gets over the session's task
// context. Mutation happens only through the planning and self-correction
// engines.
type TaskView interface {
	CurrentPlan() *Plan
	StepIndex() int
	CompletedSteps() []Step
	PendingSteps() []Step
	UnresolvedQuestions() []string
}

// HandlerRequest bundles everything a mode handler may consult for one turn:
// the routed envelope, the resolved mode, flow and meta signals and views
// over persona and task state. All fields are populated by the cognitive
// loop before dispatch; Persona and Task may be nil only in direct router
// tests.
type HandlerRequest struct {
	Envelope Envelope
	Mode     Mode
	Flow     FlowSignals
	Meta     MetaSignals
	Persona  PersonaView
	Task     TaskView
}

// UserMessage returns the raw user message carried by the envelope.
func (r *HandlerRequest) UserMessage() string { return r.Envelope.Payload.UserMessage }

// Handler is the per-mode handler contract. A handler returns a response
// envelope whose payload contains at least Result and may carry Internal
// reasoning text and a StepComplete signal. Returned errors are absorbed by
// the router into a neutral fallback response; they never escape a turn.
type Handler func(req *HandlerRequest) (Envelope, error)
