package meeting

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/model"
	"github.com/hupe1980/personamesh/summarize"
)

func segment(text string) summarize.Segment {
	return summarize.Segment{At: time.Now().UTC(), Speaker: "alice", Text: text, Confidence: 0.9}
}

// feedAndSettle pushes a segment and waits for the ingest goroutine to drain it.
func feedAndSettle(t *testing.T, l *Listener, src *ChannelSource, seg summarize.Segment, wantLen int) {
	t.Helper()
	src.Feed(seg)
	require.Eventually(t, func() bool {
		return len(l.Segments()) == wantLen
	}, time.Second, 5*time.Millisecond)
}

func TestStartAssignsMeetingID(t *testing.T) {
	src := NewChannelSource(4)
	l := NewListener(src, nil, func(o *Options) { o.AutoSummarize = false })

	id, err := l.Start("Q1 Planning")
	require.NoError(t, err)
	assert.Contains(t, id, "meeting_")
	assert.Equal(t, StatusRecording, l.Status())

	src.Close()
	_, err = l.Stop(context.Background())
	require.NoError(t, err)
}

func TestStartWhileRecordingFailsPrecondition(t *testing.T) {
	src := NewChannelSource(4)
	l := NewListener(src, nil, func(o *Options) { o.AutoSummarize = false })

	_, err := l.Start("first")
	require.NoError(t, err)

	_, err = l.Start("second")
	require.Error(t, err)
	assert.True(t, core.IsPrecondition(err))
	assert.Contains(t, err.Error(), "Meeting already in progress")
}

func TestPauseResumePreconditions(t *testing.T) {
	src := NewChannelSource(4)
	l := NewListener(src, nil, func(o *Options) { o.AutoSummarize = false })

	err := l.Pause()
	assert.True(t, core.IsPrecondition(err))
	assert.Contains(t, err.Error(), "No meeting in progress")

	err = l.Resume()
	assert.True(t, core.IsPrecondition(err))
	assert.Contains(t, err.Error(), "No paused meeting")

	_, err = l.Start("standup")
	require.NoError(t, err)
	require.NoError(t, l.Pause())
	assert.Equal(t, StatusPaused, l.Status())
	require.NoError(t, l.Resume())
	assert.Equal(t, StatusRecording, l.Status())
}

func TestStopWithoutMeetingFailsPrecondition(t *testing.T) {
	l := NewListener(NewChannelSource(1), nil)

	_, err := l.Stop(context.Background())
	assert.True(t, core.IsPrecondition(err))
	assert.Contains(t, err.Error(), "No meeting in progress")
}

func TestRecordCapturesSegments(t *testing.T) {
	src := NewChannelSource(4)
	l := NewListener(src, nil, func(o *Options) { o.AutoSummarize = false })

	_, err := l.Start("Q1 Planning", func(o *StartOptions) {
		o.MeetingID = "meeting_test"
		o.Platform = "zoom"
		o.MeetingURL = "https://example.com/meet"
	})
	require.NoError(t, err)

	feedAndSettle(t, l, src, segment("first point"), 1)
	feedAndSettle(t, l, src, segment("second point"), 2)
	src.Close()

	record, err := l.Stop(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "meeting_test", record.Metadata.MeetingID)
	assert.Equal(t, "zoom", record.Metadata.Platform)
	assert.Equal(t, "https://example.com/meet", record.Metadata.MeetingURL)
	require.NotNil(t, record.Metadata.EndTime)
	require.Len(t, record.Segments, 2)
	assert.Equal(t, "first point", record.Segments[0].Text)
	assert.Equal(t, StatusCompleted, l.Status())
}

func TestPausedSegmentsAreDropped(t *testing.T) {
	src := NewChannelSource(4)
	l := NewListener(src, nil, func(o *Options) { o.AutoSummarize = false })

	_, err := l.Start("standup")
	require.NoError(t, err)
	feedAndSettle(t, l, src, segment("before pause"), 1)

	require.NoError(t, l.Pause())
	src.Feed(segment("while paused"))
	require.Never(t, func() bool {
		return len(l.Segments()) != 1
	}, 100*time.Millisecond, 10*time.Millisecond)

	require.NoError(t, l.Resume())
	feedAndSettle(t, l, src, segment("after resume"), 2)
	src.Close()

	record, err := l.Stop(context.Background())
	require.NoError(t, err)

	require.Len(t, record.Segments, 2)
	assert.Equal(t, "before pause", record.Segments[0].Text)
	assert.Equal(t, "after resume", record.Segments[1].Text)
}

func TestStopAutoSummarizes(t *testing.T) {
	src := NewChannelSource(4)
	l := NewListener(src, summarize.New(model.NewMockModel("m")))

	_, err := l.Start("retro")
	require.NoError(t, err)
	feedAndSettle(t, l, src, segment("we shipped the beta"), 1)
	src.Close()

	record, err := l.Stop(context.Background())
	require.NoError(t, err)

	// The mock reply carries no JSON, so the literal fallback kicks in.
	require.NotNil(t, record.Summary)
	assert.Equal(t, "Meeting: retro - 1 segments transcribed", record.Summary.Summary)
}

func TestStopPersistsRecord(t *testing.T) {
	dir := t.TempDir()
	src := NewChannelSource(4)
	l := NewListener(src, summarize.New(nil), func(o *Options) { o.DataDir = dir })

	_, err := l.Start("persisted", func(o *StartOptions) { o.MeetingID = "meeting_persist" })
	require.NoError(t, err)
	feedAndSettle(t, l, src, segment("only point"), 1)
	src.Close()

	record, err := l.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "meeting_persist"), record.Dir)

	raw, err := os.ReadFile(filepath.Join(record.Dir, "metadata.json"))
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "persisted", meta.Title)

	_, err = os.Stat(filepath.Join(record.Dir, "transcript.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(record.Dir, "summary.json"))
	assert.NoError(t, err)
}

func TestListReadsPersistedMeetings(t *testing.T) {
	dir := t.TempDir()

	run := func(id, title string) {
		src := NewChannelSource(1)
		l := NewListener(src, nil, func(o *Options) {
			o.DataDir = dir
			o.AutoSummarize = false
		})
		_, err := l.Start(title, func(o *StartOptions) { o.MeetingID = id })
		require.NoError(t, err)
		src.Close()
		_, err = l.Stop(context.Background())
		require.NoError(t, err)
	}
	run("meeting_a", "Alpha")
	run("meeting_b", "Beta")

	l := NewListener(NewChannelSource(1), nil, func(o *Options) { o.DataDir = dir })
	metas, err := l.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)

	titles := []string{metas[0].Title, metas[1].Title}
	assert.ElementsMatch(t, []string{"Alpha", "Beta"}, titles)
}

func TestListWithoutDataDir(t *testing.T) {
	l := NewListener(NewChannelSource(1), nil)
	metas, err := l.List()
	assert.NoError(t, err)
	assert.Nil(t, metas)
}
