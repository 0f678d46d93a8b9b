package persona

import "strings"

// FormalityClassifier infers the register of a user message. Implementations
// must be deterministic for a given input.
type FormalityClassifier interface {
	// Classify returns "formal" or "casual" and true, or ok=false when the
	// message carries no register signal.
	Classify(userMessage string) (register string, ok bool)
}

var (
	formalKeywords = map[string]struct{}{
		"therefore":    {},
		"hence":        {},
		"thus":         {},
		"regarding":    {},
		"consequently": {},
	}
	casualKeywords = map[string]struct{}{
		"hey":  {},
		"yo":   {},
		"lol":  {},
		"cool": {},
		"ok":   {},
	}
)

// KeywordFormalityClassifier detects register from discourse-marker keywords.
// Formal markers win over casual ones when both appear.
type KeywordFormalityClassifier struct{}

var _ FormalityClassifier = KeywordFormalityClassifier{}

// Classify implements FormalityClassifier.
func (KeywordFormalityClassifier) Classify(userMessage string) (string, bool) {
	formal, casual := false, false
	for _, w := range tokenize(userMessage) {
		if _, ok := formalKeywords[w]; ok {
			formal = true
		}
		if _, ok := casualKeywords[w]; ok {
			casual = true
		}
	}
	switch {
	case formal:
		return "formal", true
	case casual:
		return "casual", true
	default:
		return "", false
	}
}

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}
