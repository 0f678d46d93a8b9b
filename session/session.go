// Package session binds a cognitive loop to a session id and provides
// snapshot persistence at session boundaries. Snapshots are plain
// JSON-compatible structures saved with last-write-wins semantics; nothing
// is persisted during a turn.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/engine"
	"github.com/hupe1980/personamesh/memory"
	"github.com/hupe1980/personamesh/persona"
	"github.com/hupe1980/personamesh/task"
)

// ErrNotFound is returned by stores when no snapshot exists for a session id.
var ErrNotFound = errors.New("session not found")

// Snapshot is the persisted shape of a session: mode transition log, persona
// context, task context and the short-term memory window contents.
type Snapshot struct {
	SessionID   string                 `json:"session_id"`
	SavedAt     time.Time              `json:"saved_at"`
	CurrentMode core.Mode              `json:"current_mode"`
	ModeLog     []core.ModeTransition  `json:"mode_log"`
	Memory      memory.Snapshot        `json:"memory"`
	Task        task.Snapshot          `json:"task"`
	Persona     persona.PersistedState `json:"persona"`
}

// Store persists session snapshots. Implementations guarantee last-write-wins
// per session id and nothing stronger.
type Store interface {
	Save(snapshot Snapshot) error
	Load(sessionID string) (Snapshot, error)
	List() ([]string, error)
	Delete(sessionID string) error
}

// Session is one conversational session: an id plus the cognitive loop that
// owns all of its mutable state. Callers must serialize turns per session.
type Session struct {
	id   string
	loop *engine.CognitiveLoop
}

// New binds a loop to a session id.
func New(id string, loop *engine.CognitiveLoop) *Session {
	return &Session{id: id, loop: loop}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Loop returns the underlying cognitive loop.
func (s *Session) Loop() *engine.CognitiveLoop { return s.loop }

// ProcessTurn runs one turn through the session's loop.
func (s *Session) ProcessTurn(ctx context.Context, userMessage string) core.TurnResult {
	return s.loop.ProcessTurn(ctx, userMessage)
}

// Snapshot exports the session's persistable state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID:   s.id,
		SavedAt:     time.Now().UTC(),
		CurrentMode: s.loop.Mode(),
		ModeLog:     s.loop.Modes().Log(),
		Memory:      s.loop.Memory().Snapshot(),
		Task:        s.loop.TaskContext().Snapshot(),
		Persona:     s.loop.PersonaContext().Persist(),
	}
}

// Restore replaces the session's state from a snapshot. Rolling analysis
// windows (stability, flow pacing) restart empty; only the durable stores
// are part of the persisted shape.
func (s *Session) Restore(snap Snapshot) {
	s.loop.Modes().RestoreLog(snap.ModeLog)
	s.loop.Memory().Restore(snap.Memory)
	s.loop.TaskContext().Restore(snap.Task)
	s.loop.PersonaContext().Restore(snap.Persona)
}
