// Package summarize turns meeting transcripts into structured summaries via
// an LLM provider, with a deterministic literal fallback when no provider is
// available or the reply carries no usable JSON.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/personamesh/logging"
	"github.com/hupe1980/personamesh/model"
	"github.com/tidwall/gjson"
)

// Segment is one transcribed span of meeting audio.
type Segment struct {
	At         time.Time `json:"timestamp"`
	Speaker    string    `json:"speaker,omitempty"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
}

// ActionItem is a follow-up captured from the meeting.
type ActionItem struct {
	Task  string `json:"task"`
	Owner string `json:"owner,omitempty"`
	Due   string `json:"due,omitempty"`
}

// Summary is the structured summary of a meeting.
type Summary struct {
	MeetingID       string       `json:"meeting_id"`
	GeneratedAt     time.Time    `json:"generated_at"`
	Summary         string       `json:"summary"`
	KeyPoints       []string     `json:"key_points"`
	Decisions       []string     `json:"decisions"`
	ActionItems     []ActionItem `json:"action_items"`
	TopicsDiscussed []string     `json:"topics_discussed"`
	NextSteps       []string     `json:"next_steps"`
	Sentiment       string       `json:"sentiment"`
}

// Options configure a Summarizer.
type Options struct {
	// Logger receives summarization diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Summarizer builds summary prompts and parses provider replies. A nil model
// always produces the literal fallback summary.
type Summarizer struct {
	model  model.Model
	logger logging.Logger
}

// New constructs a Summarizer. The model may be nil.
func New(m model.Model, optFns ...func(o *Options)) *Summarizer {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Summarizer{model: m, logger: opts.Logger}
}

// Generate produces a structured summary for the transcript. Provider errors
// and malformed replies degrade to the literal fallback; Generate never
// fails.
func (s *Summarizer) Generate(ctx context.Context, meetingID, title string, duration time.Duration, segments []Segment) Summary {
	if s.model != nil {
		prompt := buildPrompt(title, duration, segments)
		reply, err := s.model.Generate(ctx, prompt)
		if err != nil {
			s.logger.Warn("summary generation failed, using literal fallback", "meeting_id", meetingID, "error", err.Error())
		} else if sum, ok := parseSummary(reply, meetingID); ok {
			return sum
		} else {
			s.logger.Warn("summary reply carried no usable JSON, using literal fallback", "meeting_id", meetingID)
		}
	}
	return literalSummary(meetingID, title, segments)
}

// buildPrompt renders the timestamped transcript into the structured-summary
// prompt.
func buildPrompt(title string, duration time.Duration, segments []Segment) string {
	var sb strings.Builder
	for i, seg := range segments {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "[%s] %s", seg.At.Format("15:04:05"), seg.Text)
	}

	return fmt.Sprintf(`Analyze this meeting transcript and provide a structured summary.

Meeting: %s
Duration: %.1f minutes

TRANSCRIPT:
%s

Please provide:
1. A brief summary (2-3 sentences)
2. Key points discussed (bullet points)
3. Decisions made
4. Action items (with suggested owners if mentioned)
5. Topics discussed
6. Next steps
7. Overall sentiment (positive/neutral/negative)

Format your response as JSON with these exact keys:
- summary
- key_points (array)
- decisions (array)
- action_items (array of objects with: task, owner, due)
- topics_discussed (array)
- next_steps (array)
- sentiment
`, title, duration.Minutes(), sb.String())
}

// parseSummary extracts the first embedded JSON object from a provider reply.
func parseSummary(reply, meetingID string) (Summary, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return Summary{}, false
	}
	doc := reply[start : end+1]
	if !gjson.Valid(doc) {
		return Summary{}, false
	}
	root := gjson.Parse(doc)

	sum := Summary{
		MeetingID:       meetingID,
		GeneratedAt:     time.Now().UTC(),
		Summary:         root.Get("summary").String(),
		KeyPoints:       stringSlice(root.Get("key_points")),
		Decisions:       stringSlice(root.Get("decisions")),
		TopicsDiscussed: stringSlice(root.Get("topics_discussed")),
		NextSteps:       stringSlice(root.Get("next_steps")),
		Sentiment:       "neutral",
	}
	if v := root.Get("sentiment"); v.Exists() && v.String() != "" {
		sum.Sentiment = v.String()
	}
	for _, item := range root.Get("action_items").Array() {
		sum.ActionItems = append(sum.ActionItems, ActionItem{
			Task:  item.Get("task").String(),
			Owner: item.Get("owner").String(),
			Due:   item.Get("due").String(),
		})
	}
	return sum, true
}

// literalSummary is the deterministic degradation path: the first transcript
// segments become the key points.
func literalSummary(meetingID, title string, segments []Segment) Summary {
	keyPoints := make([]string, 0, 3)
	for i, seg := range segments {
		if i == 3 {
			break
		}
		keyPoints = append(keyPoints, seg.Text)
	}
	return Summary{
		MeetingID:   meetingID,
		GeneratedAt: time.Now().UTC(),
		Summary:     fmt.Sprintf("Meeting: %s - %d segments transcribed", title, len(segments)),
		KeyPoints:   keyPoints,
		Sentiment:   "neutral",
	}
}

func stringSlice(v gjson.Result) []string {
	arr := v.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		out = append(out, item.String())
	}
	return out
}
