// Package engine runs the per-turn cognitive pipeline. The CognitiveLoop
// owns the fixed stage order of a turn: classify, update mode, record memory,
// derive meta signals, check stability, self-correct, compute flow signals,
// maintain the plan, dispatch to the mode handler, refine the output and feed
// the persona memory engine. One loop serves one session; callers must
// serialize turns.
package engine

import (
	"context"
	"time"

	"github.com/hupe1980/personamesh/classifier"
	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/correction"
	"github.com/hupe1980/personamesh/flow"
	"github.com/hupe1980/personamesh/logging"
	"github.com/hupe1980/personamesh/memory"
	"github.com/hupe1980/personamesh/meta"
	"github.com/hupe1980/personamesh/mode"
	"github.com/hupe1980/personamesh/persona"
	"github.com/hupe1980/personamesh/planning"
	"github.com/hupe1980/personamesh/router"
	"github.com/hupe1980/personamesh/stability"
	"github.com/hupe1980/personamesh/task"
)

// Options configure a CognitiveLoop.
type Options struct {
	// Classifier labels raw user messages. Defaults to the keyword
	// reference classifier.
	Classifier core.Classifier

	// Logger receives turn-level diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger

	// InitialMode is the session's starting mode. Defaults to greeting.
	InitialMode core.Mode

	// Memory overrides the session memory store.
	Memory *memory.ShortTermMemory

	// PersonaContext overrides the session persona.
	PersonaContext *persona.Context
}

// CognitiveLoop wires the session stores and analysis engines into one
// synchronous turn pipeline.
type CognitiveLoop struct {
	classifier core.Classifier
	logger     logging.Logger

	modes      *mode.Manager
	memory     *memory.ShortTermMemory
	taskCtx    *task.Context
	personaCtx *persona.Context
	styler     *persona.Styler
	personaMem *persona.MemoryEngine

	reasoner   *meta.Reasoner
	monitor    *stability.Monitor
	correction *correction.Engine
	flow       *flow.Engine
	planner    *planning.Engine
	router     *router.Router

	lastHandlerOut *core.Envelope
	clarifications int
	turn           int
}

// New constructs a CognitiveLoop around a router. Handlers must already be
// registered (or registered before the first ProcessTurn call).
func New(r *router.Router, optFns ...func(o *Options)) *CognitiveLoop {
	opts := Options{
		Classifier:  classifier.New(),
		Logger:      logging.NoOpLogger{},
		InitialMode: core.ModeGreeting,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	mem := opts.Memory
	if mem == nil {
		mem = memory.New()
	}
	pctx := opts.PersonaContext
	if pctx == nil {
		pctx = persona.NewContext()
	}
	return &CognitiveLoop{
		classifier: opts.Classifier,
		logger:     opts.Logger,
		modes:      mode.NewManager(opts.InitialMode),
		memory:     mem,
		taskCtx:    task.NewContext(),
		personaCtx: pctx,
		styler:     persona.NewStyler(pctx),
		personaMem: persona.NewMemoryEngine(pctx, func(o *persona.MemoryEngineOptions) { o.Logger = opts.Logger }),
		reasoner:   meta.NewReasoner(),
		monitor:    stability.NewMonitor(),
		correction: correction.NewEngine(func(o *correction.Options) { o.Logger = opts.Logger }),
		flow:       flow.NewEngine(),
		planner:    planning.NewEngine(),
		router:     r,
	}
}

// Accessors for session state; used by the session store and by tests.

// Mode returns the current conversational mode.
func (l *CognitiveLoop) Mode() core.Mode { return l.modes.Current() }

// Modes returns the mode manager.
func (l *CognitiveLoop) Modes() *mode.Manager { return l.modes }

// Memory returns the short-term memory store.
func (l *CognitiveLoop) Memory() *memory.ShortTermMemory { return l.memory }

// TaskContext returns the task context.
func (l *CognitiveLoop) TaskContext() *task.Context { return l.taskCtx }

// PersonaContext returns the persona context.
func (l *CognitiveLoop) PersonaContext() *persona.Context { return l.personaCtx }

// Monitor returns the stability monitor.
func (l *CognitiveLoop) Monitor() *stability.Monitor { return l.monitor }

// Corrections returns the self-correction log.
func (l *CognitiveLoop) Corrections() []string { return l.correction.Corrections() }

// ProcessTurn runs one full turn. It never returns an error for internal
// signal conditions; ambiguity, contradiction and instability are absorbed
// into mode changes and corrected state. The context is consulted only
// between stages; a started stage always completes.
func (l *CognitiveLoop) ProcessTurn(ctx context.Context, userMessage string) core.TurnResult {
	start := time.Now()
	l.turn++

	env := core.NewUserEnvelope(userMessage)

	// Anticipatory persona shift from the raw message, before any routing.
	l.styler.BeginTurn(userMessage)
	l.personaMem.AdaptToUser(userMessage)

	result := l.classifier.Classify(userMessage)
	prev := l.modes.Current()
	current, reason := l.modes.Update(result)

	l.memory.AddUserMessage(memory.UserMessage{Message: userMessage, Intent: result.Intent, At: env.Metadata.Timestamp})
	l.memory.AddClassifierOutput(result)
	l.memory.AddModeTransition(core.ModeTransition{From: prev, To: current, Reason: reason, At: time.Now().UTC()})

	snapshot := l.memory.Snapshot()
	signals := l.reasoner.Analyze(result, l.lastHandlerOut, &snapshot)
	stab := l.monitor.Check(current, signals, snapshot)
	signals.Stability = &stab

	l.correction.Apply(l.taskCtx, l.memory, l.modes, signals)
	current = l.modes.Current() // correction may have forced a reset

	flowSignals := l.flow.Analyze(flow.Input{
		Classifier:         result,
		Meta:               signals,
		Stability:          stab,
		PlanExists:         l.taskCtx.CurrentPlan() != nil,
		PlanDone:           l.taskCtx.PlanComplete(),
		CurrentMode:        current,
		HandlerIntent:      lastIntent(l.lastHandlerOut),
		ClarificationCount: l.clarifications,
	})
	if flowSignals.ShouldRequestClarification {
		l.clarifications++
	}

	l.maintainPlan(userMessage, result, current)

	env.Metadata.Mode = current
	req := &core.HandlerRequest{
		Envelope: env,
		Mode:     current,
		Flow:     flowSignals,
		Meta:     signals,
		Persona:  l.styler,
		Task:     l.taskCtx,
	}
	resp := l.router.Dispatch(req)
	l.correction.RefineOutput(&resp, signals)
	l.lastHandlerOut = &resp

	if l.taskCtx.CurrentPlan() != nil {
		plan, idx := l.planner.UpdateProgress(l.taskCtx.CurrentPlan(), l.taskCtx.StepIndex(), resp)
		if idx != l.taskCtx.StepIndex() {
			l.taskCtx.SetPlan(plan, idx, l.taskCtx.PlanConfidence())
		}
	}

	l.memory.AddAgentResponse(memory.AgentResponse{Text: resp.Payload.Result, Handler: resp.Metadata.Handler, At: time.Now().UTC()})

	// Feed persona memory with whichever outputs exist, internal first.
	if resp.Payload.Internal != "" {
		l.personaMem.ObserveAndUpdate(resp.Payload.Internal, userMessage)
	}
	if resp.Payload.Result != "" {
		l.personaMem.ObserveAndUpdate(resp.Payload.Result, userMessage)
	}

	l.logger.Info("turn complete",
		"turn", l.turn,
		"mode", string(current),
		"handler", resp.Metadata.Handler,
		"stability", stab.StabilityScore,
		"duration", time.Since(start).String(),
	)

	select {
	case <-ctx.Done():
		// The turn is already complete; cancellation only affects callers.
	default:
	}

	return core.TurnResult{
		DisplayText:    resp.Payload.Result,
		ReasoningTrace: resp.Payload.Internal,
		Metadata: core.TurnMetadata{
			Mode:              current,
			Handler:           resp.Metadata.Handler,
			PersonaVoice:      l.personaCtx.VoiceStyle(),
			RoutingTrace:      resp.Metadata.RoutingTrace,
			SignatureRequired: resp.Metadata.SignatureRequired,
			FlowReason:        flowSignals.Reason,
			StabilityScore:    stab.StabilityScore,
		},
		PersonaState: l.personaCtx.Snapshot(),
	}
}

// maintainPlan generates, and revises, the session plan around task intents.
func (l *CognitiveLoop) maintainPlan(userMessage string, result core.ClassifierResult, current core.Mode) {
	if l.taskCtx.CurrentPlan() == nil {
		if current == core.ModeTask {
			gen := l.planner.GeneratePlan(result.Intent, l.memory, l.taskCtx)
			l.taskCtx.SetTask(userMessage)
			l.taskCtx.SetPlan(gen.Plan, gen.StepIndex, gen.Confidence)
			l.logger.Debug("plan generated", "steps", gen.Plan.Len(), "confidence", gen.Confidence)
		}
		return
	}
	if l.planner.NeedsRevision(userMessage, l.taskCtx.CurrentPlan()) {
		plan, rev := l.planner.RevisePlan(userMessage, l.taskCtx.CurrentPlan(), l.taskCtx.CompletedSteps())
		l.taskCtx.AddRevision(rev)
		l.taskCtx.SetPlan(plan, l.taskCtx.StepIndex(), l.taskCtx.PlanConfidence())
		l.logger.Debug("plan revised", "reason", rev.Reason)
	}
}

func lastIntent(env *core.Envelope) string {
	if env == nil {
		return ""
	}
	return env.Intent
}
