// Package planning generates, advances and revises multi-step plans. The
// revision trigger is a named policy (RevisionTrigger) so the placeholder
// keyword heuristic can be swapped without touching orchestration code.
package planning

import (
	"strings"

	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/memory"
	"github.com/hupe1980/personamesh/task"
)

// RevisionTrigger decides whether user input demands a plan revision.
// Implementations must be side-effect free.
type RevisionTrigger interface {
	NeedsRevision(userInput string, plan *core.Plan) bool
}

// KeywordRevisionTrigger fires on the "change" / "revise" substrings. It is
// a placeholder business rule retained for compatibility; replace via the
// RevisionTrigger interface.
type KeywordRevisionTrigger struct{}

// NeedsRevision implements RevisionTrigger.
func (KeywordRevisionTrigger) NeedsRevision(userInput string, _ *core.Plan) bool {
	return strings.Contains(userInput, "change") || strings.Contains(userInput, "revise")
}

// TraceEntry is one record of the engine-local call trace.
type TraceEntry struct {
	Action    string     `json:"action"`
	Plan      *core.Plan `json:"plan,omitempty"`
	StepIndex int        `json:"step_index,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// GeneratedPlan bundles the result of GeneratePlan.
type GeneratedPlan struct {
	Plan       *core.Plan
	StepIndex  int
	Confidence float64
}

// Options configure the engine.
type Options struct {
	RevisionTrigger RevisionTrigger
}

// Engine is the session's planner. All calls append to an engine-local
// trace.
type Engine struct {
	trigger RevisionTrigger
	trace   []TraceEntry
}

// NewEngine constructs an Engine with the keyword trigger by default.
func NewEngine(optFns ...func(o *Options)) *Engine {
	opts := Options{RevisionTrigger: KeywordRevisionTrigger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{trigger: opts.RevisionTrigger}
}

// GeneratePlan returns the fixed-shape 3-step plan for task-like intents
// (requirements -> design -> implement) with step 0 active and confidence
// 0.9. Other intents get a single-step plan with confidence 1.0. The memory
// and task context parameters are accepted for future policy implementations
// and are not consulted by the fixed-shape planner.
func (e *Engine) GeneratePlan(intent string, _ *memory.ShortTermMemory, _ *task.Context) GeneratedPlan {
	var g GeneratedPlan
	switch intent {
	case "task", "complex-task":
		g = GeneratedPlan{
			Plan: &core.Plan{Steps: []core.Step{
				{Description: "Gather requirements", Status: core.StepPending},
				{Description: "Design solution", Status: core.StepPending},
				{Description: "Implement and test", Status: core.StepPending},
			}},
			Confidence: 0.9,
		}
	default:
		g = GeneratedPlan{
			Plan: &core.Plan{Steps: []core.Step{
				{Description: "Execute task", Status: core.StepPending},
			}},
			Confidence: 1.0,
		}
	}
	e.trace = append(e.trace, TraceEntry{Action: "generate_plan", Plan: g.Plan.Clone()})
	return g
}

// UpdateProgress marks the current step complete and advances the index by
// one iff the handler output signals step completion; otherwise the plan and
// index are returned unchanged.
func (e *Engine) UpdateProgress(plan *core.Plan, stepIndex int, handlerOut core.Envelope) (*core.Plan, int) {
	if handlerOut.Payload.StepComplete && plan != nil && stepIndex < plan.Len() {
		plan.Steps[stepIndex].Status = core.StepComplete
		stepIndex++
	}
	e.trace = append(e.trace, TraceEntry{Action: "update_progress", Plan: plan.Clone(), StepIndex: stepIndex})
	return plan, stepIndex
}

// NeedsRevision delegates to the configured RevisionTrigger policy.
func (e *Engine) NeedsRevision(userInput string, plan *core.Plan) bool {
	return e.trigger.NeedsRevision(userInput, plan)
}

// RevisePlan produces a new 2-step plan, re-marking as many leading steps
// complete as there were previously completed steps, and returns the single
// revision-history record referencing the prior plan and the triggering
// input.
func (e *Engine) RevisePlan(userInput string, plan *core.Plan, completedSteps []core.Step) (*core.Plan, core.PlanRevision) {
	newPlan := &core.Plan{Steps: []core.Step{
		{Description: "Revised step 1", Status: core.StepPending},
		{Description: "Revised step 2", Status: core.StepPending},
	}}
	for i := range completedSteps {
		if i < newPlan.Len() {
			newPlan.Steps[i].Status = core.StepComplete
		}
	}
	rev := core.PlanRevision{OldPlan: plan.Clone(), NewPlan: newPlan.Clone(), Reason: userInput}
	e.trace = append(e.trace, TraceEntry{Action: "revise_plan", Plan: newPlan.Clone(), Reason: userInput})
	return newPlan, rev
}

// Trace returns a copy of the engine-local call trace.
func (e *Engine) Trace() []TraceEntry {
	out := make([]TraceEntry, len(e.trace))
	copy(out, e.trace)
	return out
}
