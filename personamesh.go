// Package personamesh provides a high-level façade over the cognitive loop
// and its supporting stages (mode management, meta-reasoning, stability
// monitoring, self-correction, conversation flow, planning, persona styling
// and routing). Most applications interact with this package by:
//  1. Creating a PersonaMesh via New() (optionally overriding defaults)
//  2. Opening sessions (one per conversation) with OpenSession
//  3. Driving each session turn-by-turn via ProcessTurn
//
// The façade registers the default mode handlers and delegates turn
// execution to engine.CognitiveLoop while keeping setup ergonomics concise.
// All defaults are safe for local development and testing; production
// deployments typically supply a durable session store, a model-backed
// classifier and a structured logger.
package personamesh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hupe1980/personamesh/config"
	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/engine"
	"github.com/hupe1980/personamesh/handler"
	"github.com/hupe1980/personamesh/logging"
	"github.com/hupe1980/personamesh/memory"
	"github.com/hupe1980/personamesh/persona"
	"github.com/hupe1980/personamesh/router"
	"github.com/hupe1980/personamesh/session"
)

// Options configures the PersonaMesh instance.
type Options struct {
	// Classifier labels raw user messages; nil keeps the keyword reference
	// classifier.
	Classifier core.Classifier

	// InitialMode is the starting mode of new sessions. Defaults to greeting.
	InitialMode core.Mode

	// MemoryWindow bounds each short-term memory sequence of new sessions.
	// Zero keeps the default window.
	MemoryWindow int

	// PersonaOptions customize the persona of new sessions.
	PersonaOptions func(o *persona.Options)

	// SessionStore persists session snapshots (defaults to in-memory).
	SessionStore session.Store

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// PersonaMesh is the high-level façade aggregating session construction and
// persistence.
type PersonaMesh struct {
	opts  Options
	store session.Store

	mu       sync.Mutex
	sessions map[string]*session.Session
	handlers []registration
}

type registration struct {
	mode core.Mode
	name string
	h    core.Handler
}

// New creates a PersonaMesh instance with optional overrides.
func New(optFns ...func(o *Options)) *PersonaMesh {
	opts := Options{
		InitialMode:  core.ModeGreeting,
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &PersonaMesh{
		opts:     opts,
		store:    opts.SessionStore,
		sessions: map[string]*session.Session{},
	}
}

// NewFromConfig builds a PersonaMesh from environment-driven configuration:
// log level and format, the short-term memory window, and a file-backed
// session store under DataDir. Explicit option functions run last and win.
func NewFromConfig(cfg *config.Config, optFns ...func(o *Options)) (*PersonaMesh, error) {
	store, err := session.NewFileStore(filepath.Join(cfg.DataDir, "sessions"))
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	base := func(o *Options) {
		o.Logger = logging.NewLogger(&logging.LoggerConfig{
			Level:  logging.ParseLevel(cfg.LogLevel),
			Format: cfg.LogFormat,
			Output: os.Stdout,
		})
		o.MemoryWindow = cfg.MemoryWindow
		o.SessionStore = store
	}
	return New(append([]func(o *Options){base}, optFns...)...), nil
}

// RegisterHandler overrides or extends the default mode handlers for every
// session opened afterwards.
func (m *PersonaMesh) RegisterHandler(mode core.Mode, name string, h core.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, registration{mode: mode, name: name, h: h})
}

// OpenSession returns the session for id, creating it with a freshly wired
// loop when absent and restoring persisted state when the store has a
// snapshot for it.
func (m *PersonaMesh) OpenSession(id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[id]; ok {
		return sess, nil
	}

	sess := session.New(id, m.newLoop())
	if snap, err := m.store.Load(id); err == nil {
		sess.Restore(snap)
	} else if err != session.ErrNotFound {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	m.sessions[id] = sess
	return sess, nil
}

// ProcessTurn runs one turn against the named session, creating it on first
// use. The turn never fails for internal signal conditions; only session
// store errors surface.
func (m *PersonaMesh) ProcessTurn(ctx context.Context, sessionID, userMessage string) (core.TurnResult, error) {
	sess, err := m.OpenSession(sessionID)
	if err != nil {
		return core.TurnResult{}, err
	}
	return sess.ProcessTurn(ctx, userMessage), nil
}

// SaveSession snapshots the named session into the store.
func (m *PersonaMesh) SaveSession(sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return session.ErrNotFound
	}
	return m.store.Save(sess.Snapshot())
}

// newLoop wires a router with the default handlers (reflection also serves
// greeting, fallback and diagnostic, matching its neutral-render behavior in
// those modes) plus any registered overrides, and builds a loop around it.
func (m *PersonaMesh) newLoop() *engine.CognitiveLoop {
	r := router.New(func(o *router.Options) {
		o.Logger = m.opts.Logger
	})
	r.Register(core.ModeTask, "agent_task", handler.Task)
	r.Register(core.ModeReflection, "agent_reflection", handler.Reflection)
	r.Register(core.ModeErrorRecovery, "agent_error_recovery", handler.ErrorRecovery)
	r.Register(core.ModeOnboarding, "agent_onboarding", handler.Onboarding)
	r.Register(core.ModeGreeting, "agent_greeter", handler.Reflection)
	r.Register(core.ModeFallback, "agent_fallback", handler.Reflection)
	r.Register(core.ModeDiagnostic, "agent_diagnostic", handler.Reflection)
	r.SetFallback("agent_fallback", handler.Reflection)
	for _, reg := range m.handlers {
		r.Register(reg.mode, reg.name, reg.h)
	}

	return engine.New(r, func(o *engine.Options) {
		if m.opts.Classifier != nil {
			o.Classifier = m.opts.Classifier
		}
		o.Logger = m.opts.Logger
		o.InitialMode = m.opts.InitialMode
		if m.opts.MemoryWindow > 0 {
			o.Memory = memory.New(func(mo *memory.Options) {
				mo.MaxUserMessages = m.opts.MemoryWindow
				mo.MaxAgentResponses = m.opts.MemoryWindow
				mo.MaxClassifierOutputs = m.opts.MemoryWindow
				mo.MaxModeTransitions = m.opts.MemoryWindow
			})
		}
		if m.opts.PersonaOptions != nil {
			o.PersonaContext = persona.NewContext(m.opts.PersonaOptions)
		}
	})
}
