// Package persona holds the session's voice: the mutable style/tone/
// signature state rendered into every outgoing message (Styler) and the
// adaptation engine that evolves it with hysteresis from observed output and
// user input (MemoryEngine). A Context is owned by exactly one session and
// is never shared.
package persona

import (
	"time"

	"github.com/hupe1980/personamesh/core"
)

// StyleEntry is one (timestamp, style) history record.
type StyleEntry struct {
	At    time.Time `json:"at"`
	Style string    `json:"style"`
}

// ToneEntry is one (timestamp, tones) history record.
type ToneEntry struct {
	At    time.Time `json:"at"`
	Tones []string  `json:"tones"`
}

// SignatureEntry is one (timestamp, signature) history record.
type SignatureEntry struct {
	At        time.Time `json:"at"`
	Signature string    `json:"signature"`
}

// EvolutionState rate-limits persona drift. Stability is a self-reinforcing
// scalar: high stability suppresses abrupt style shifts (and decays slightly
// on each suppression), low stability lets shifts through while recovering
// plasticity. Frequent reversals therefore make the persona increasingly
// willing to change - hysteresis rather than rigid or erratic style.
type EvolutionState struct {
	Stability  float64   `json:"stability"`
	LastUpdate time.Time `json:"last_update,omitempty"`
}

// Options configure a new Context.
type Options struct {
	VoiceStyle       string
	ToneModifiers    []string
	ModeStyles       map[core.Mode]string
	SignaturePhrases []string
	SuppressionMode  bool
}

// Context stores persona-related attributes for consistent agent style and
// voice across turns.
type Context struct {
	voiceStyle       string
	toneModifiers    []string
	modeStyles       map[core.Mode]string
	signaturePhrases []string

	personaMemory    map[string][]string
	styleHistory     []StyleEntry
	toneHistory      []ToneEntry
	signaturesUsed   []SignatureEntry
	userPreferences  map[string]string
	evolution        EvolutionState
	suppressionMode  bool
	turnMuted        bool
}

// NewContext constructs a Context. Defaults: concise voice, a single
// "confident" tone modifier, every mode styled with the voice style, perfect
// evolution stability.
func NewContext(optFns ...func(o *Options)) *Context {
	opts := Options{
		VoiceStyle:    "concise",
		ToneModifiers: []string{"confident"},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	modeStyles := map[core.Mode]string{
		core.ModeTask:          opts.VoiceStyle,
		core.ModeReflection:    opts.VoiceStyle,
		core.ModeErrorRecovery: opts.VoiceStyle,
		core.ModeOnboarding:    opts.VoiceStyle,
	}
	for m, s := range opts.ModeStyles {
		modeStyles[m] = s
	}
	return &Context{
		voiceStyle:       opts.VoiceStyle,
		toneModifiers:    append([]string(nil), opts.ToneModifiers...),
		modeStyles:       modeStyles,
		signaturePhrases: append([]string(nil), opts.SignaturePhrases...),
		personaMemory:    map[string][]string{},
		userPreferences:  map[string]string{},
		evolution:        EvolutionState{Stability: 1.0},
		suppressionMode:  opts.SuppressionMode,
	}
}

// VoiceStyle returns the current evolving voice style label.
func (c *Context) VoiceStyle() string { return c.voiceStyle }

// SetVoiceStyle replaces the voice style, propagating the change to every
// mode override that was tracking the old voice style, and records the value
// in persona memory.
func (c *Context) SetVoiceStyle(style string) {
	old := c.voiceStyle
	c.voiceStyle = style
	for m, s := range c.modeStyles {
		if s == old {
			c.modeStyles[m] = style
		}
	}
	c.Remember("voice_style", style)
}

// setVoiceStyleDirect replaces the voice style without mode propagation or
// memory recording. Used by user-adaptation and coherence reverts, matching
// their narrower scope.
func (c *Context) setVoiceStyleDirect(style string) { c.voiceStyle = style }

// ToneModifiers returns the active tone modifiers in insertion order.
func (c *Context) ToneModifiers() []string {
	out := make([]string, len(c.toneModifiers))
	copy(out, c.toneModifiers)
	return out
}

// AddToneModifier appends a tone modifier.
func (c *Context) AddToneModifier(tone string) {
	c.toneModifiers = append(c.toneModifiers, tone)
}

// hasToneModifier reports whether tone is already active.
func (c *Context) hasToneModifier(tone string) bool {
	for _, t := range c.toneModifiers {
		if t == tone {
			return true
		}
	}
	return false
}

// ModeStyle returns the style effective for a mode: the mode-specific
// override when present, otherwise the evolving voice style.
func (c *Context) ModeStyle(mode core.Mode) string {
	if s, ok := c.modeStyles[mode]; ok {
		return s
	}
	return c.voiceStyle
}

// SignaturePhrases returns the signature phrases in order.
func (c *Context) SignaturePhrases() []string {
	out := make([]string, len(c.signaturePhrases))
	copy(out, c.signaturePhrases)
	return out
}

// AddSignaturePhrase appends a phrase unless already present.
func (c *Context) AddSignaturePhrase(phrase string) {
	for _, p := range c.signaturePhrases {
		if p == phrase {
			return
		}
	}
	c.signaturePhrases = append(c.signaturePhrases, phrase)
}

// Remember appends a historical value under key in persona memory.
func (c *Context) Remember(key, value string) {
	c.personaMemory[key] = append(c.personaMemory[key], value)
}

// Memory returns a copy of the persona memory map.
func (c *Context) Memory() map[string][]string {
	out := make(map[string][]string, len(c.personaMemory))
	for k, v := range c.personaMemory {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// StyleHistory returns a copy of the style history.
func (c *Context) StyleHistory() []StyleEntry {
	out := make([]StyleEntry, len(c.styleHistory))
	copy(out, c.styleHistory)
	return out
}

// ToneHistory returns a copy of the tone history.
func (c *Context) ToneHistory() []ToneEntry {
	out := make([]ToneEntry, len(c.toneHistory))
	copy(out, c.toneHistory)
	return out
}

// SignaturesUsed returns a copy of the signature usage history.
func (c *Context) SignaturesUsed() []SignatureEntry {
	out := make([]SignatureEntry, len(c.signaturesUsed))
	copy(out, c.signaturesUsed)
	return out
}

// UserPreference returns an inferred user preference.
func (c *Context) UserPreference(key string) (string, bool) {
	v, ok := c.userPreferences[key]
	return v, ok
}

// setUserPreference records an inferred user preference.
func (c *Context) setUserPreference(key, value string) { c.userPreferences[key] = value }

// Evolution returns the current evolution state.
func (c *Context) Evolution() EvolutionState { return c.evolution }

// SetStability overrides the evolution stability scalar. Exposed for tests
// and for session restore.
func (c *Context) SetStability(s float64) { c.evolution.Stability = s }

// Suppressed reports whether persona shaping is globally muted for the
// session.
func (c *Context) Suppressed() bool { return c.suppressionMode }

// SetSuppressionMode toggles global persona muting.
func (c *Context) SetSuppressionMode(on bool) { c.suppressionMode = on }

// setTurnMuted marks persona shaping muted for the current turn only
// (low-intent input). Reset at the start of every turn.
func (c *Context) setTurnMuted(on bool) { c.turnMuted = on }

// turnMutedNow reports per-turn muting.
func (c *Context) turnMutedNow() bool { return c.turnMuted }

// Snapshot returns the turn-level persona view.
func (c *Context) Snapshot() core.PersonaSnapshot {
	return core.PersonaSnapshot{
		VoiceStyle:       c.voiceStyle,
		ToneModifiers:    c.ToneModifiers(),
		SignaturePhrases: c.SignaturePhrases(),
		Stability:        c.evolution.Stability,
		SuppressionMode:  c.suppressionMode,
		LastUpdate:       c.evolution.LastUpdate,
	}
}

// PersistedState is the full JSON-compatible persisted shape of a persona
// context, consumed and produced at session boundaries only.
type PersistedState struct {
	VoiceStyle       string               `json:"voice_style"`
	ToneModifiers    []string             `json:"tone_modifiers"`
	ModeStyles       map[core.Mode]string `json:"mode_specific_style"`
	SignaturePhrases []string             `json:"signature_phrasing"`
	PersonaMemory    map[string][]string  `json:"persona_memory"`
	StyleHistory     []StyleEntry         `json:"style_history"`
	ToneHistory      []ToneEntry          `json:"tone_history"`
	SignaturesUsed   []SignatureEntry     `json:"signature_patterns_used"`
	UserPreferences  map[string]string    `json:"user_preference_inferences"`
	Evolution        EvolutionState       `json:"persona_evolution_state"`
	SuppressionMode  bool                 `json:"persona_suppression_mode"`
}

// Persist exports the full context state.
func (c *Context) Persist() PersistedState {
	modeStyles := make(map[core.Mode]string, len(c.modeStyles))
	for m, s := range c.modeStyles {
		modeStyles[m] = s
	}
	return PersistedState{
		VoiceStyle:       c.voiceStyle,
		ToneModifiers:    c.ToneModifiers(),
		ModeStyles:       modeStyles,
		SignaturePhrases: c.SignaturePhrases(),
		PersonaMemory:    c.Memory(),
		StyleHistory:     c.StyleHistory(),
		ToneHistory:      c.ToneHistory(),
		SignaturesUsed:   c.SignaturesUsed(),
		UserPreferences:  copyStringMap(c.userPreferences),
		Evolution:        c.evolution,
		SuppressionMode:  c.suppressionMode,
	}
}

// Restore replaces the context state from a persisted snapshot.
func (c *Context) Restore(s PersistedState) {
	c.voiceStyle = s.VoiceStyle
	c.toneModifiers = append([]string(nil), s.ToneModifiers...)
	c.modeStyles = map[core.Mode]string{}
	for m, st := range s.ModeStyles {
		c.modeStyles[m] = st
	}
	c.signaturePhrases = append([]string(nil), s.SignaturePhrases...)
	c.personaMemory = map[string][]string{}
	for k, v := range s.PersonaMemory {
		c.personaMemory[k] = append([]string(nil), v...)
	}
	c.styleHistory = append([]StyleEntry(nil), s.StyleHistory...)
	c.toneHistory = append([]ToneEntry(nil), s.ToneHistory...)
	c.signaturesUsed = append([]SignatureEntry(nil), s.SignaturesUsed...)
	c.userPreferences = copyStringMap(s.UserPreferences)
	c.evolution = s.Evolution
	c.suppressionMode = s.SuppressionMode
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
