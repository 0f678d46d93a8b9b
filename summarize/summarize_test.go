package summarize

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/personamesh/model"
)

func transcript() []Segment {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	return []Segment{
		{At: base, Speaker: "alice", Text: "Let's review the Q1 roadmap.", Confidence: 0.95},
		{At: base.Add(30 * time.Second), Speaker: "bob", Text: "We decided to ship the beta in April.", Confidence: 0.92},
		{At: base.Add(time.Minute), Speaker: "alice", Text: "Bob will own the rollout plan.", Confidence: 0.9},
		{At: base.Add(90 * time.Second), Speaker: "bob", Text: "Next step is the launch checklist.", Confidence: 0.88},
	}
}

const structuredReply = `Here is the summary you asked for:
{
  "summary": "The team reviewed the Q1 roadmap and set the beta date.",
  "key_points": ["Q1 roadmap reviewed", "Beta ships in April"],
  "decisions": ["Ship the beta in April"],
  "action_items": [{"task": "Draft rollout plan", "owner": "bob", "due": "2025-03-20"}],
  "topics_discussed": ["roadmap", "beta launch"],
  "next_steps": ["Prepare launch checklist"],
  "sentiment": "positive"
}
Let me know if you need anything else.`

func TestGenerateParsesStructuredReply(t *testing.T) {
	m := model.NewMockModel("summarizer")
	s := New(m)

	segs := transcript()
	m.AddResponse(buildPrompt("Q1 Planning", 30*time.Minute, segs), structuredReply)
	sum := s.Generate(context.Background(), "meeting_1", "Q1 Planning", 30*time.Minute, segs)

	assert.Equal(t, "meeting_1", sum.MeetingID)
	assert.Equal(t, "The team reviewed the Q1 roadmap and set the beta date.", sum.Summary)
	assert.Equal(t, []string{"Q1 roadmap reviewed", "Beta ships in April"}, sum.KeyPoints)
	assert.Equal(t, []string{"Ship the beta in April"}, sum.Decisions)
	require.Len(t, sum.ActionItems, 1)
	assert.Equal(t, ActionItem{Task: "Draft rollout plan", Owner: "bob", Due: "2025-03-20"}, sum.ActionItems[0])
	assert.Equal(t, []string{"roadmap", "beta launch"}, sum.TopicsDiscussed)
	assert.Equal(t, []string{"Prepare launch checklist"}, sum.NextSteps)
	assert.Equal(t, "positive", sum.Sentiment)
	assert.False(t, sum.GeneratedAt.IsZero())
}

func TestGenerateFallsBackOnModelError(t *testing.T) {
	m := model.NewMockModel("summarizer")
	m.FailWith(errors.New("provider down"))
	s := New(m)

	sum := s.Generate(context.Background(), "meeting_2", "Standup", 10*time.Minute, transcript())

	assert.Equal(t, "Meeting: Standup - 4 segments transcribed", sum.Summary)
	assert.Equal(t, "neutral", sum.Sentiment)
}

func TestGenerateFallsBackOnNonJSONReply(t *testing.T) {
	// The default echo reply carries no JSON object.
	s := New(model.NewMockModel("summarizer"))

	sum := s.Generate(context.Background(), "meeting_3", "Sync", 5*time.Minute, transcript())

	assert.Equal(t, "Meeting: Sync - 4 segments transcribed", sum.Summary)
}

func TestGenerateWithoutModelUsesLiteralSummary(t *testing.T) {
	s := New(nil)

	sum := s.Generate(context.Background(), "meeting_4", "Retro", 25*time.Minute, transcript())

	assert.Equal(t, "Meeting: Retro - 4 segments transcribed", sum.Summary)
	// The first three segments become the key points.
	require.Len(t, sum.KeyPoints, 3)
	assert.Equal(t, "Let's review the Q1 roadmap.", sum.KeyPoints[0])
	assert.Equal(t, "Bob will own the rollout plan.", sum.KeyPoints[2])
}

func TestLiteralSummaryWithEmptyTranscript(t *testing.T) {
	sum := literalSummary("meeting_5", "Ghost Meeting", nil)

	assert.Equal(t, "Meeting: Ghost Meeting - 0 segments transcribed", sum.Summary)
	assert.Empty(t, sum.KeyPoints)
}

func TestParseSummaryRejectsMalformedJSON(t *testing.T) {
	_, ok := parseSummary(`{"summary": "unbalanced`, "m")
	assert.False(t, ok)

	_, ok = parseSummary("no braces at all", "m")
	assert.False(t, ok)
}

func TestParseSummaryDefaultsSentiment(t *testing.T) {
	sum, ok := parseSummary(`{"summary": "short sync"}`, "m")
	require.True(t, ok)
	assert.Equal(t, "neutral", sum.Sentiment)
	assert.Equal(t, "short sync", sum.Summary)
	assert.Empty(t, sum.KeyPoints)
}

func TestBuildPromptIncludesTranscriptAndKeys(t *testing.T) {
	prompt := buildPrompt("Q1 Planning", 30*time.Minute, transcript())

	assert.Contains(t, prompt, "Meeting: Q1 Planning")
	assert.Contains(t, prompt, "Duration: 30.0 minutes")
	assert.Contains(t, prompt, "[14:00:00] Let's review the Q1 roadmap.")
	assert.Contains(t, prompt, "[14:01:30] Next step is the launch checklist.")
	assert.Contains(t, prompt, "Format your response as JSON with these exact keys:")
	assert.Contains(t, prompt, "action_items (array of objects with: task, owner, due)")
}
