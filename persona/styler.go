package persona

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hupe1980/personamesh/core"
)

// lowIntentPhrases are dismissive inputs that mute persona shaping for the
// turn. Matched after trimming and lowercasing.
var lowIntentPhrases = map[string]struct{}{
	"nothing lol": {},
	"idk":         {},
	"nah":         {},
	"don't care":  {},
	"dont care":   {},
	"nope":        {},
	"whatever":    {},
	"meh":         {},
	"shrug":       {},
}

// LowIntent reports whether text is a dismissive or empty input that should
// not receive persona shaping. Single-character fragments count as empty;
// short greetings do not.
func LowIntent(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(t) <= 1 {
		return true
	}
	_, ok := lowIntentPhrases[t]
	return ok
}

// Styler renders outgoing text in the session's persona. It implements
// core.PersonaView so handlers can style without depending on this package.
type Styler struct {
	ctx *Context
}

// NewStyler wraps a persona context.
func NewStyler(ctx *Context) *Styler {
	return &Styler{ctx: ctx}
}

var _ core.PersonaView = (*Styler)(nil)

// BeginTurn resets per-turn muting and arms it when the user's raw input is
// low-intent. Called once at the start of each turn.
func (s *Styler) BeginTurn(userInput string) {
	s.ctx.setTurnMuted(LowIntent(userInput))
}

// Style renders text in the persona voice for the given mode:
//
//	[style | tone1, tone2] text
//	signature phrases joined by spaces
//
// The header always carries the evolving voice style so user adaptation and
// coherence damping show up in rendered output; mode overrides only shape
// handler text, never the tag. Under session suppression, per-turn muting,
// or when the text itself is low-intent, the render is neutral with no tone
// and no signature.
func (s *Styler) Style(text string, mode core.Mode) string {
	if s.ctx.Suppressed() || s.ctx.turnMutedNow() || LowIntent(text) {
		return fmt.Sprintf("[neutral | ] %s\n", text)
	}
	styled := fmt.Sprintf("[%s | %s] %s\n", s.ctx.VoiceStyle(), strings.Join(s.ctx.ToneModifiers(), ", "), text)
	if sigs := s.ctx.SignaturePhrases(); len(sigs) > 0 {
		styled += strings.Join(sigs, " ")
	}
	return styled
}

// ModeStyle returns the style effective for a mode.
func (s *Styler) ModeStyle(mode core.Mode) string { return s.ctx.ModeStyle(mode) }

// VoiceStyle returns the current voice style label.
func (s *Styler) VoiceStyle() string { return s.ctx.VoiceStyle() }

// ToneModifiers returns the active tone modifiers.
func (s *Styler) ToneModifiers() []string { return s.ctx.ToneModifiers() }

// SignaturePhrases returns the signature phrases.
func (s *Styler) SignaturePhrases() []string { return s.ctx.SignaturePhrases() }

// Suppressed reports whether persona shaping is muted for this render,
// either session-wide or for the current turn.
func (s *Styler) Suppressed() bool { return s.ctx.Suppressed() || s.ctx.turnMutedNow() }

// Feedback is explicit user-driven persona steering.
type Feedback struct {
	LikedTone string
	NewPhrase string
}

// Evolve applies explicit feedback to the persona: a liked tone joins the
// modifiers and a new phrase joins the signatures.
func (s *Styler) Evolve(fb Feedback) {
	if fb.LikedTone != "" {
		s.ctx.AddToneModifier(fb.LikedTone)
	}
	if fb.NewPhrase != "" {
		s.ctx.AddSignaturePhrase(fb.NewPhrase)
	}
}
