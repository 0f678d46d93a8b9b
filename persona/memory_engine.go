package persona

import (
	"regexp"
	"strings"
	"time"

	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/logging"
)

// styledPattern matches the persona render header: "[style | tones] rest".
// The rest group spans newlines so trailing signature lines are captured.
var styledPattern = regexp.MustCompile(`(?s)^\[(.*?)\|(.*?)\](.*)`)

// signaturePattern finds an inline "- ..." signature span inside rendered
// output.
var signaturePattern = regexp.MustCompile(`-\s*[^\n]+`)

// MemoryEngineOptions configure a MemoryEngine.
type MemoryEngineOptions struct {
	// Formality infers user register for adaptation. Defaults to
	// KeywordFormalityClassifier.
	Formality FormalityClassifier

	// Logger receives adaptation events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// MemoryEngine observes rendered output and user input each turn and evolves
// the persona context: it extracts the style features actually emitted,
// reinforces the dominant tone and signature, adapts register to the user,
// and damps oscillation through stability hysteresis.
type MemoryEngine struct {
	ctx       *Context
	formality FormalityClassifier
	logger    logging.Logger
}

// NewMemoryEngine constructs a MemoryEngine bound to a persona context.
func NewMemoryEngine(ctx *Context, optFns ...func(o *MemoryEngineOptions)) *MemoryEngine {
	opts := MemoryEngineOptions{
		Formality: KeywordFormalityClassifier{},
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &MemoryEngine{ctx: ctx, formality: opts.Formality, logger: opts.Logger}
}

// ObserveAndUpdate runs the full per-turn adaptation pass over the styled
// output the session just emitted and the user message that prompted it.
func (e *MemoryEngine) ObserveAndUpdate(styledOutput, userMessage string) {
	e.extractFeatures(styledOutput)
	e.reinforceTone()
	e.strengthenSignature()
	if userMessage != "" {
		e.AdaptToUser(userMessage)
	}
	e.maintainCoherence()
	e.ctx.evolution.LastUpdate = time.Now().UTC()
}

// extractFeatures parses a rendered message back into style, tones and
// signature, appending each found feature to its history.
func (e *MemoryEngine) extractFeatures(output string) {
	m := styledPattern.FindStringSubmatch(output)
	if m == nil {
		return
	}
	now := time.Now().UTC()

	if style := strings.ToLower(strings.TrimSpace(m[1])); style != "" {
		e.ctx.styleHistory = append(e.ctx.styleHistory, StyleEntry{At: now, Style: style})
	}

	var tones []string
	for _, t := range strings.Split(m[2], ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tones = append(tones, t)
		}
	}
	if len(tones) > 0 {
		e.ctx.toneHistory = append(e.ctx.toneHistory, ToneEntry{At: now, Tones: tones})
	}

	if sig := extractSignature(m[3]); sig != "" {
		e.ctx.signaturesUsed = append(e.ctx.signaturesUsed, SignatureEntry{At: now, Signature: sig})
	}
}

// extractSignature pulls a signature phrase from the body of a rendered
// message: an inline "- ..." span wins, otherwise the line after the body is
// accepted when it looks like a tagline.
func extractSignature(body string) string {
	if m := signaturePattern.FindString(body); m != "" {
		return strings.TrimSpace(m)
	}
	if _, after, ok := strings.Cut(body, "\n"); ok {
		candidate := strings.TrimSpace(after)
		if candidate != "" && (strings.HasPrefix(candidate, "-") || strings.Contains(candidate, ",") || strings.Contains(candidate, "PersonaMesh")) {
			return candidate
		}
	}
	return ""
}

// reinforceTone promotes the historically most frequent tone into the active
// modifiers. Ties resolve to the earliest-seen tone.
func (e *MemoryEngine) reinforceTone() {
	top := mostFrequent(func(yield func(string)) {
		for _, entry := range e.ctx.toneHistory {
			for _, t := range entry.Tones {
				yield(t)
			}
		}
	})
	if top == "" || e.ctx.hasToneModifier(top) {
		return
	}
	e.ctx.AddToneModifier(top)
	e.logger.Info("persona tone reinforced", "tone", top)
}

// strengthenSignature promotes the most frequently observed signature into
// the active phrase set.
func (e *MemoryEngine) strengthenSignature() {
	top := mostFrequent(func(yield func(string)) {
		for _, entry := range e.ctx.signaturesUsed {
			yield(entry.Signature)
		}
	})
	if top == "" {
		return
	}
	e.ctx.AddSignaturePhrase(top)
}

// AdaptToUser shifts the voice register toward the user's inferred register
// and records the inference. The shift is direct: it does not rewrite mode
// overrides or persona memory.
func (e *MemoryEngine) AdaptToUser(userMessage string) {
	register, ok := e.formality.Classify(userMessage)
	if !ok {
		return
	}
	e.ctx.setUserPreference("formality", register)
	switch register {
	case "formal":
		e.ctx.setVoiceStyleDirect("formal")
	case "casual":
		e.ctx.setVoiceStyleDirect("casual")
	}
	e.logger.Debug("persona adapted to user register", "register", register)
}

// maintainCoherence applies hysteresis to style drift. With more than two
// recorded styles, a change between the last two is reverted while stability
// is high (decaying stability), or allowed while stability is low (recovering
// stability).
func (e *MemoryEngine) maintainCoherence() {
	h := e.ctx.styleHistory
	if len(h) <= 2 {
		return
	}
	last, prev := h[len(h)-1].Style, h[len(h)-2].Style
	if last == prev {
		return
	}
	if e.ctx.evolution.Stability > 0.5 {
		e.ctx.styleHistory[len(h)-1].Style = prev
		e.ctx.setVoiceStyleDirect(prev)
		e.ctx.evolution.Stability *= 0.95
		e.logger.Debug("persona style shift reverted", "kept", prev, "rejected", last, "stability", e.ctx.evolution.Stability)
		return
	}
	e.ctx.evolution.Stability *= 1.05
	e.logger.Debug("persona style shift accepted", "style", last, "stability", e.ctx.evolution.Stability)
}

// mostFrequent counts values produced by walk and returns the most frequent
// one, resolving ties to the value seen first. Empty walk yields "".
func mostFrequent(walk func(yield func(string))) string {
	counts := map[string]int{}
	var order []string
	walk(func(v string) {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	})
	best, bestCount := "", 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

// Snapshot exposes the turn-level persona snapshot via the engine for
// callers that only hold the engine.
func (e *MemoryEngine) Snapshot() core.PersonaSnapshot { return e.ctx.Snapshot() }
