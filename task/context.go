// Package task holds the per-session task context: the current task label,
// generated plan history, parameters, unresolved questions and plan progress
// bookkeeping. The context has a single owner per session; only the planning
// and self-correction engines mutate it.
package task

import "github.com/hupe1980/personamesh/core"

// Context is the mutable task/plan state of one session.
type Context struct {
	currentTask         string
	partialPlans        []*core.Plan
	parameters          map[string]any
	unresolvedQuestions []string
	progressState       map[string]any

	currentPlan     *core.Plan
	stepIndex       int
	planConfidence  float64
	revisionHistory []core.PlanRevision
}

// NewContext returns an empty task context.
func NewContext() *Context {
	return &Context{
		parameters:    map[string]any{},
		progressState: map[string]any{},
	}
}

// SetTask records the current task label.
func (c *Context) SetTask(task string) { c.currentTask = task }

// CurrentTask returns the current task label ("" when none).
func (c *Context) CurrentTask() string { return c.currentTask }

// SetParameter records a task parameter.
func (c *Context) SetParameter(key string, value any) { c.parameters[key] = value }

// Parameter returns a task parameter and whether it was present.
func (c *Context) Parameter(key string) (any, bool) {
	v, ok := c.parameters[key]
	return v, ok
}

// AddUnresolvedQuestion appends an open question.
func (c *Context) AddUnresolvedQuestion(q string) {
	c.unresolvedQuestions = append(c.unresolvedQuestions, q)
}

// UnresolvedQuestions returns the open questions in order.
func (c *Context) UnresolvedQuestions() []string {
	out := make([]string, len(c.unresolvedQuestions))
	copy(out, c.unresolvedQuestions)
	return out
}

// SetProgress records a progress-state value.
func (c *Context) SetProgress(key string, value any) { c.progressState[key] = value }

// SetPlan installs a new current plan at the given step index with the
// planner's confidence, also appending it to the partial-plan history.
func (c *Context) SetPlan(plan *core.Plan, stepIndex int, confidence float64) {
	c.currentPlan = plan
	c.stepIndex = stepIndex
	c.planConfidence = confidence
	if plan != nil {
		c.partialPlans = append(c.partialPlans, plan.Clone())
	}
}

// CurrentPlan returns the active plan (nil when none).
func (c *Context) CurrentPlan() *core.Plan { return c.currentPlan }

// StepIndex returns the index of the active step within the current plan.
func (c *Context) StepIndex() int { return c.stepIndex }

// SetStepIndex moves the active step pointer.
func (c *Context) SetStepIndex(i int) { c.stepIndex = i }

// PlanConfidence returns the planner's confidence in the current plan.
func (c *Context) PlanConfidence() float64 { return c.planConfidence }

// CompletedSteps returns the completed steps of the current plan.
func (c *Context) CompletedSteps() []core.Step { return c.currentPlan.CompletedSteps() }

// PendingSteps returns the pending steps of the current plan.
func (c *Context) PendingSteps() []core.Step { return c.currentPlan.PendingSteps() }

// PlanComplete reports whether a plan exists and every step has been passed.
func (c *Context) PlanComplete() bool {
	return c.currentPlan != nil && c.stepIndex >= c.currentPlan.Len()
}

// AddRevision appends one plan revision record. The history is append-only;
// Clear is the only way to drop it.
func (c *Context) AddRevision(rev core.PlanRevision) {
	c.revisionHistory = append(c.revisionHistory, rev)
}

// RevisionHistory returns a copy of the plan revision records.
func (c *Context) RevisionHistory() []core.PlanRevision {
	out := make([]core.PlanRevision, len(c.revisionHistory))
	copy(out, c.revisionHistory)
	return out
}

// ResetMissing clears unresolved questions and parameters only. Used by the
// self-correction engine for missing-information recovery.
func (c *Context) ResetMissing() {
	c.unresolvedQuestions = nil
	c.parameters = map[string]any{}
}

// Clear wipes the whole context back to its initial state. Clearing twice is
// safe.
func (c *Context) Clear() {
	c.currentTask = ""
	c.partialPlans = nil
	c.parameters = map[string]any{}
	c.unresolvedQuestions = nil
	c.progressState = map[string]any{}
	c.currentPlan = nil
	c.stepIndex = 0
	c.planConfidence = 0
	c.revisionHistory = nil
}

// Snapshot is the JSON-compatible persisted shape of a task context.
type Snapshot struct {
	CurrentTask         string              `json:"current_task,omitempty"`
	PartialPlans        []*core.Plan        `json:"partial_plans,omitempty"`
	Parameters          map[string]any      `json:"parameters,omitempty"`
	UnresolvedQuestions []string            `json:"unresolved_questions,omitempty"`
	ProgressState       map[string]any      `json:"progress_state,omitempty"`
	CurrentPlan         *core.Plan          `json:"current_plan,omitempty"`
	StepIndex           int                 `json:"current_step_index"`
	PlanConfidence      float64             `json:"plan_confidence"`
	RevisionHistory     []core.PlanRevision `json:"plan_revision_history,omitempty"`
}

// Snapshot returns a deep copy of the context state.
func (c *Context) Snapshot() Snapshot {
	s := Snapshot{
		CurrentTask:         c.currentTask,
		Parameters:          map[string]any{},
		UnresolvedQuestions: c.UnresolvedQuestions(),
		ProgressState:       map[string]any{},
		CurrentPlan:         c.currentPlan.Clone(),
		StepIndex:           c.stepIndex,
		PlanConfidence:      c.planConfidence,
		RevisionHistory:     c.RevisionHistory(),
	}
	for k, v := range c.parameters {
		s.Parameters[k] = v
	}
	for k, v := range c.progressState {
		s.ProgressState[k] = v
	}
	for _, p := range c.partialPlans {
		s.PartialPlans = append(s.PartialPlans, p.Clone())
	}
	return s
}

// Restore replaces the context state from a snapshot.
func (c *Context) Restore(s Snapshot) {
	c.Clear()
	c.currentTask = s.CurrentTask
	for k, v := range s.Parameters {
		c.parameters[k] = v
	}
	c.unresolvedQuestions = append([]string(nil), s.UnresolvedQuestions...)
	for k, v := range s.ProgressState {
		c.progressState[k] = v
	}
	c.currentPlan = s.CurrentPlan.Clone()
	c.stepIndex = s.StepIndex
	c.planConfidence = s.PlanConfidence
	c.revisionHistory = append([]core.PlanRevision(nil), s.RevisionHistory...)
	for _, p := range s.PartialPlans {
		c.partialPlans = append(c.partialPlans, p.Clone())
	}
}

// compile-time check that Context satisfies the handler-facing view.
var _ core.TaskView = (*Context)(nil)
