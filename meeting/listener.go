// Package meeting captures meeting transcripts from an external source,
// persists them and generates structured summaries. The listener never
// produces audio itself: transcript segments arrive through a bounded
// channel owned by a TranscriptSource, which is the only concurrency
// boundary of the package.
package meeting

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/logging"
	"github.com/hupe1980/personamesh/summarize"
)

// Status is the recording state of the listener.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusRecording  Status = "recording"
	StatusPaused     Status = "paused"
	StatusStopped    Status = "stopped"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// Metadata describes one recorded meeting.
type Metadata struct {
	MeetingID       string     `json:"meeting_id"`
	Title           string     `json:"title"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`
	Participants    []string   `json:"participants,omitempty"`
	Platform        string     `json:"platform"`
	MeetingURL      string     `json:"meeting_url,omitempty"`
}

// Record is the finalized result of a stopped meeting.
type Record struct {
	Metadata Metadata            `json:"metadata"`
	Segments []summarize.Segment `json:"segments"`
	Summary  *summarize.Summary  `json:"summary,omitempty"`
	Dir      string              `json:"dir,omitempty"`
}

// TranscriptSource hands completed transcript segments to the listener. The
// returned channel must be bounded and is closed by the source when capture
// ends.
type TranscriptSource interface {
	Segments() <-chan summarize.Segment
}

// ChannelSource is the trivial TranscriptSource over a caller-fed channel.
type ChannelSource struct {
	ch chan summarize.Segment
}

// NewChannelSource creates a source with the given buffer size.
func NewChannelSource(buffer int) *ChannelSource {
	return &ChannelSource{ch: make(chan summarize.Segment, buffer)}
}

// Feed offers a segment to the source, blocking while the buffer is full.
func (s *ChannelSource) Feed(seg summarize.Segment) { s.ch <- seg }

// Close signals the end of capture.
func (s *ChannelSource) Close() { close(s.ch) }

// Segments implements TranscriptSource.
func (s *ChannelSource) Segments() <-chan summarize.Segment { return s.ch }

// StartOptions shape a new recording.
type StartOptions struct {
	MeetingID  string
	Platform   string
	MeetingURL string
}

// Options configure a Listener.
type Options struct {
	// DataDir is where meeting records are persisted. Empty disables
	// persistence.
	DataDir string

	// AutoSummarize generates a summary on Stop. Defaults to true.
	AutoSummarize bool

	// Logger receives listener diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Listener coordinates transcript ingestion, persistence and summarization
// for one meeting at a time.
type Listener struct {
	source     TranscriptSource
	summarizer *summarize.Summarizer
	dataDir    string
	auto       bool
	logger     logging.Logger

	mu       sync.Mutex
	status   Status
	meeting  *Metadata
	segments []summarize.Segment
	ingest   bool
	done     chan struct{}
}

// NewListener constructs a Listener over a transcript source. The summarizer
// may be nil when AutoSummarize is disabled.
func NewListener(source TranscriptSource, summarizer *summarize.Summarizer, optFns ...func(o *Options)) *Listener {
	opts := Options{
		AutoSummarize: true,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Listener{
		source:     source,
		summarizer: summarizer,
		dataDir:    opts.DataDir,
		auto:       opts.AutoSummarize,
		logger:     opts.Logger,
		status:     StatusWaiting,
	}
}

// Status returns the current recording state.
func (l *Listener) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Segments returns a copy of the transcript captured so far.
func (l *Listener) Segments() []summarize.Segment {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]summarize.Segment, len(l.segments))
	copy(out, l.segments)
	return out
}

// Start begins recording a new meeting and returns its id. Starting while a
// meeting is in progress is a precondition violation.
func (l *Listener) Start(title string, optFns ...func(o *StartOptions)) (string, error) {
	opts := StartOptions{Platform: "manual"}
	for _, fn := range optFns {
		fn(&opts)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status == StatusRecording || l.status == StatusPaused {
		return "", core.NewPreconditionError("start", "Meeting already in progress")
	}

	id := opts.MeetingID
	if id == "" {
		id = fmt.Sprintf("meeting_%s", time.Now().Format("20060102_150405"))
	}
	l.meeting = &Metadata{
		MeetingID:  id,
		Title:      title,
		StartTime:  time.Now().UTC(),
		Platform:   opts.Platform,
		MeetingURL: opts.MeetingURL,
	}
	l.segments = nil
	l.status = StatusRecording
	l.ingest = true
	l.done = make(chan struct{})
	go l.ingestLoop(l.done)

	l.logger.Info("meeting recording started", "meeting_id", id, "title", title)
	return id, nil
}

// ingestLoop drains the transcript source while ingestion is enabled.
// Segments arriving while paused are dropped, mirroring a muted recorder.
func (l *Listener) ingestLoop(done chan struct{}) {
	defer close(done)
	for seg := range l.source.Segments() {
		l.mu.Lock()
		if !l.ingest {
			l.mu.Unlock()
			return
		}
		if l.status == StatusRecording {
			l.segments = append(l.segments, seg)
		}
		l.mu.Unlock()
	}
}

// Pause suspends transcript ingestion. Pausing while not recording is a
// precondition violation.
func (l *Listener) Pause() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.status != StatusRecording {
		return core.NewPreconditionError("pause", "No meeting in progress")
	}
	l.status = StatusPaused
	l.logger.Info("meeting paused", "meeting_id", l.meeting.MeetingID)
	return nil
}

// Resume restarts transcript ingestion after a pause.
func (l *Listener) Resume() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.status != StatusPaused {
		return core.NewPreconditionError("resume", "No paused meeting")
	}
	l.status = StatusRecording
	l.logger.Info("meeting resumed", "meeting_id", l.meeting.MeetingID)
	return nil
}

// Stop finalizes the meeting: ingestion halts, metadata is closed out, the
// record is persisted and, when enabled, summarized. Stopping without an
// active meeting is a precondition violation.
func (l *Listener) Stop(ctx context.Context) (*Record, error) {
	l.mu.Lock()
	if l.status != StatusRecording && l.status != StatusPaused {
		l.mu.Unlock()
		return nil, core.NewPreconditionError("stop", "No meeting in progress")
	}
	l.ingest = false
	l.status = StatusStopped
	meta := *l.meeting
	done := l.done
	l.mu.Unlock()

	// Wait for the ingest loop only if the source already closed; a live
	// source keeps its goroutine parked until the next segment arrives,
	// which the ingest flag then discards.
	select {
	case <-done:
	default:
	}

	now := time.Now().UTC()
	meta.EndTime = &now
	meta.DurationSeconds = now.Sub(meta.StartTime).Seconds()

	l.mu.Lock()
	segments := make([]summarize.Segment, len(l.segments))
	copy(segments, l.segments)
	l.meeting = &meta
	l.mu.Unlock()

	record := &Record{Metadata: meta, Segments: segments}

	if l.auto && l.summarizer != nil {
		l.setStatus(StatusProcessing)
		sum := l.summarizer.Generate(ctx, meta.MeetingID, meta.Title, time.Duration(meta.DurationSeconds*float64(time.Second)), segments)
		record.Summary = &sum
	}

	if l.dataDir != "" {
		dir, err := l.persist(record)
		if err != nil {
			return nil, fmt.Errorf("persist meeting %s: %w", meta.MeetingID, err)
		}
		record.Dir = dir
	}

	l.setStatus(StatusCompleted)
	l.logger.Info("meeting recording completed", "meeting_id", meta.MeetingID, "segments", len(segments))
	return record, nil
}

func (l *Listener) setStatus(s Status) {
	l.mu.Lock()
	l.status = s
	l.mu.Unlock()
}

// persist writes metadata.json, transcript.json and summary.json under a
// per-meeting directory.
func (l *Listener) persist(record *Record) (string, error) {
	dir := filepath.Join(l.dataDir, record.Metadata.MeetingID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "metadata.json"), record.Metadata); err != nil {
		return "", err
	}
	transcript := struct {
		MeetingID string              `json:"meeting_id"`
		Segments  []summarize.Segment `json:"segments"`
	}{record.Metadata.MeetingID, record.Segments}
	if err := writeJSON(filepath.Join(dir, "transcript.json"), transcript); err != nil {
		return "", err
	}
	if record.Summary != nil {
		if err := writeJSON(filepath.Join(dir, "summary.json"), record.Summary); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// List reads back the metadata of every persisted meeting.
func (l *Listener) List() ([]Metadata, error) {
	if l.dataDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(l.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var metas []Metadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(l.dataDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta Metadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			continue
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
