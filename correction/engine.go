// Package correction implements the self-correction engine: automatic state
// remediation (context clearing, memory pruning, forced mode reset, output
// annotation) triggered by contradiction or instability signals. All
// corrections are idempotent; applying the same signal bundle twice produces
// the same end state.
package correction

import (
	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/logging"
	"github.com/hupe1980/personamesh/memory"
	"github.com/hupe1980/personamesh/mode"
	"github.com/hupe1980/personamesh/task"
)

// Options configure the engine.
type Options struct {
	Logger logging.Logger
}

// Engine applies corrective mutations to the session's stores when meta
// signals (optionally carrying nested stability signals) indicate trouble.
// Every action taken is appended to an engine-local correction log.
type Engine struct {
	corrections []string
	logger      logging.Logger
}

// NewEngine constructs an Engine.
func NewEngine(optFns ...func(o *Options)) *Engine {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{logger: opts.Logger}
}

// ReviseTaskContext clears or partially resets the task context. A
// contradiction wipes it entirely; missing information without a
// contradiction clears only unresolved questions and parameters. A
// stability-driven rebuild also wipes it and can co-occur with the
// contradiction clear (clearing twice is safe).
func (e *Engine) ReviseTaskContext(tc *task.Context, signals core.MetaSignals) {
	if signals.Contradiction {
		tc.Clear()
		e.record("task context cleared due to contradiction")
	} else if signals.MissingInformation {
		tc.ResetMissing()
		e.record("task context reset for missing information")
	}
	if signals.Stability != nil && signals.Stability.Unstable() {
		tc.Clear()
		e.record("task context rebuilt due to instability")
	}
}

// PruneMemory trims short-term memory: an unstable state drops the single
// oldest user message; stability-driven overload or a score below 0.5 clears
// the user-message and agent-response windows entirely.
func (e *Engine) PruneMemory(mem *memory.ShortTermMemory, signals core.MetaSignals) {
	if signals.UnstableState && mem.DropOldestUserMessage() {
		e.record("oldest user message pruned due to instability")
	}
	if s := signals.Stability; s != nil && (s.MemoryOverload || s.StabilityScore < 0.5) {
		mem.ClearConversation()
		e.record("memory cleared due to overload or instability")
	}
}

// ResetMode forces the mode manager into reflection when the state is
// unstable, bypassing the normal transition policy. The forced transition is
// still logged by the manager.
func (e *Engine) ResetMode(mm *mode.Manager, signals core.MetaSignals) {
	if signals.UnstableState && mm.Current() != core.ModeReflection {
		mm.Set(core.ModeReflection, "forced reset: unstable state")
		e.record("mode reset to reflection due to instability")
	}
}

// RefineOutput annotates the handler's response payload with a correction
// note on contradiction or stability-driven instability. Text content is not
// otherwise altered.
func (e *Engine) RefineOutput(out *core.Envelope, signals core.MetaSignals) {
	if out == nil {
		return
	}
	if signals.Contradiction {
		out.Payload.Correction = "Output revised due to contradiction."
		e.record("handler output revised for contradiction")
	}
	if signals.Stability != nil && signals.Stability.Unstable() {
		out.Payload.Correction = "Output simplified due to instability."
		e.record("handler output simplified for instability")
	}
}

// Apply runs every correction stage against the session stores in the fixed
// order context -> memory -> mode.
func (e *Engine) Apply(tc *task.Context, mem *memory.ShortTermMemory, mm *mode.Manager, signals core.MetaSignals) {
	e.ReviseTaskContext(tc, signals)
	e.PruneMemory(mem, signals)
	e.ResetMode(mm, signals)
}

// Corrections returns a copy of the correction log.
func (e *Engine) Corrections() []string {
	out := make([]string, len(e.corrections))
	copy(out, e.corrections)
	return out
}

func (e *Engine) record(action string) {
	e.corrections = append(e.corrections, action)
	e.logger.Warn("Self-correction applied", "action", action)
}
