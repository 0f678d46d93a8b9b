// Package classifier provides the external-classifier boundary of the
// cognitive loop. The loop only depends on core.Classifier; KeywordClassifier
// is the deterministic reference implementation used when no model-backed
// classifier is wired in.
package classifier

import (
	"regexp"
	"strings"

	"github.com/hupe1980/personamesh/core"
)

var (
	taskKeywords = []string{
		"do", "run", "execute", "start", "complete", "finish", "make", "build", "create", "generate",
		"analyze", "process", "calculate", "solve", "find", "update", "delete", "add", "remove",
		"task:", "please", "could you", "would you", "can you", "let us", "let's", "help me", "assist",
		"proceed", "continue", "next",
	}
	structuralPrefixes = []string{"/", "!", "task:", "run", "execute"}

	greetingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bhi\b`),
		regexp.MustCompile(`\bhello\b`),
		regexp.MustCompile(`\bhey\b`),
		regexp.MustCompile(`\bgreetings\b`),
		regexp.MustCompile(`\bgood (morning|afternoon|evening)\b`),
	}
	conversationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bhow are you\b`),
		regexp.MustCompile(`\bwhat's up\b`),
		regexp.MustCompile(`\bcan we talk\b`),
		regexp.MustCompile(`\blet's chat\b`),
	}
	taskPatterns = []*regexp.Regexp{
		regexp.MustCompile(`search|gather|lookup|investigate|reference|latest`),
		regexp.MustCompile(`write|draft|compose|paraphrase|polish`),
		regexp.MustCompile(`plan|break down|steps|roadmap|sequence|workflow|organize`),
		regexp.MustCompile(`critique|review|evaluate|score|rate|feedback|assess`),
		regexp.MustCompile(`align|persona|style|consistency|match profile`),
		regexp.MustCompile(`execute|perform|carry out`),
	}
	reflectionPattern    = regexp.MustCompile(`\b(summarize|summary|recap|reflect)\b`)
	errorPattern         = regexp.MustCompile(`\b(error|failed|failing|broken|crash(ed)?)\b`)
	contradictionPattern = regexp.MustCompile(`\b(contradict(s|ion)?|you said|that's wrong|that is wrong)\b`)
	missingInfoPattern   = regexp.MustCompile(`\b(not sure which|don't have the|need more (info|information|details)|missing (info|information|details))\b`)
)

// KeywordClassifier scores user text against weighted lexical cues: structural
// command prefixes, task verbs, greeting and conversational phrases. Inputs
// matching none of the cue classes come back ambiguous at low confidence.
type KeywordClassifier struct{}

var _ core.Classifier = KeywordClassifier{}

// New returns a KeywordClassifier.
func New() KeywordClassifier { return KeywordClassifier{} }

// Classify implements core.Classifier.
func (KeywordClassifier) Classify(userMessage string) core.ClassifierResult {
	text := strings.ToLower(strings.TrimSpace(userMessage))

	signals := core.Signals{
		Contradiction: contradictionPattern.MatchString(text),
		MissingInfo:   missingInfoPattern.MatchString(text),
		Error:         errorPattern.MatchString(text),
	}

	// Conversation-repair cues outrank task scoring: an error report or a
	// reflection request is itself the intent.
	if signals.Error {
		return core.ClassifierResult{Intent: "error", Confidence: 0.9, Signals: signals}
	}
	if reflectionPattern.MatchString(text) {
		return core.ClassifierResult{Intent: "reflection", Confidence: 0.9, Signals: signals}
	}

	score := 0.0

	structural := false
	for _, prefix := range structuralPrefixes {
		if strings.HasPrefix(text, prefix) {
			structural = true
			break
		}
	}
	if structural {
		score += 0.35
	}

	keywordHit := false
	for _, kw := range taskKeywords {
		if strings.Contains(text, kw) {
			keywordHit = true
			break
		}
	}
	if keywordHit {
		score += 0.25
	}

	patternHit := matchAny(taskPatterns, text)
	if patternHit {
		score += 0.25
	}

	greeting := matchAny(greetingPatterns, text)
	conversation := matchAny(conversationPatterns, text)
	if greeting {
		score = max(score, 0.7)
	}
	if conversation {
		score = max(score, 0.6)
	}

	var intent string
	switch {
	case greeting:
		intent = "greeting"
	case conversation:
		intent = "conversational"
	case structural || keywordHit || patternHit:
		intent = "task"
	default:
		intent = "ambiguous"
		signals.Ambiguous = true
		score = 0.3
	}

	confidence := min(score, 1.0)
	switch {
	case intent == "ambiguous":
		confidence = 0.3
	case intent == "greeting":
		confidence = 0.98
	case intent == "conversational":
		confidence = 0.85
	case confidence < 0.7:
		confidence = 0.6
	}

	return core.ClassifierResult{Intent: intent, Confidence: confidence, Signals: signals}
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
