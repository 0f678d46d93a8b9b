package core

import "time"

// PersonaSnapshot is the turn-level view of persona state returned with
// every turn result. It is JSON-compatible for UI and persistence consumers.
type PersonaSnapshot struct {
	VoiceStyle       string    `json:"voice_style"`
	ToneModifiers    []string  `json:"tone_modifiers"`
	SignaturePhrases []string  `json:"signature_phrasing"`
	Stability        float64   `json:"stability"`
	SuppressionMode  bool      `json:"persona_suppression_mode"`
	LastUpdate       time.Time `json:"last_update,omitempty"`
}

// TurnMetadata is the cross-cutting metadata attached to a turn result.
type TurnMetadata struct {
	Mode              Mode     `json:"mode"`
	Handler           string   `json:"handler,omitempty"`
	PersonaVoice      string   `json:"persona_shaping,omitempty"`
	RoutingTrace      []string `json:"routing_trace,omitempty"`
	SignatureRequired bool     `json:"signature_required"`
	FlowReason        string   `json:"flow_reason,omitempty"`
	StabilityScore    float64  `json:"stability_score"`
}

// TurnResult is what one completed turn hands back to the caller: the styled
// display text, the internal reasoning trace (may be empty), turn metadata
// and the persona snapshot after persona-memory updates ran.
type TurnResult struct {
	DisplayText    string          `json:"display_text"`
	ReasoningTrace string          `json:"reasoning_trace,omitempty"`
	Metadata       TurnMetadata    `json:"metadata"`
	PersonaState   PersonaSnapshot `json:"persona_state"`
}
