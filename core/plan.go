package core

// StepStatus is the lifecycle state of a single plan step.
type StepStatus string

const (
	// StepPending marks a step that has not been executed yet.
	StepPending StepStatus = "pending"
	// StepComplete marks a finished step.
	StepComplete StepStatus = "complete"
)

// Step is one unit of a plan.
type Step struct {
	Description string     `json:"step"`
	Status      StepStatus `json:"status"`
}

// Plan is an ordered sequence of steps. The current step index points into
// Steps; completed and pending views are derived, never stored.
type Plan struct {
	Steps []Step `json:"steps"`
}

// Len returns the number of steps.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Steps)
}

// CompletedSteps returns the steps marked complete, preserving order.
func (p *Plan) CompletedSteps() []Step {
	if p == nil {
		return nil
	}
	var out []Step
	for _, s := range p.Steps {
		if s.Status == StepComplete {
			out = append(out, s)
		}
	}
	return out
}

// PendingSteps returns the steps still pending, preserving order.
func (p *Plan) PendingSteps() []Step {
	if p == nil {
		return nil
	}
	var out []Step
	for _, s := range p.Steps {
		if s.Status == StepPending {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy safe for independent mutation, or nil for a nil
// plan.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	steps := make([]Step, len(p.Steps))
	copy(steps, p.Steps)
	return &Plan{Steps: steps}
}

// PlanRevision is one append-only revision-history record linking the prior
// plan, its replacement and the user input that triggered the revision.
type PlanRevision struct {
	OldPlan *Plan  `json:"old_plan"`
	NewPlan *Plan  `json:"new_plan"`
	Reason  string `json:"reason"`
}
