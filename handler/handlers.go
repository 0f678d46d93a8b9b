// Package handler provides the default mode handlers of the cognitive loop.
// Each honors the core.Handler contract: consume the routed request, produce
// a response envelope with a persona-styled Result, optional Internal
// reasoning text and a StepComplete signal. Sessions may replace any of them
// through registration.
package handler

import (
	"fmt"
	"strings"

	"github.com/hupe1980/personamesh/core"
)

// Task executes the current plan step by step: it asks for clarification or
// details when flow signals demand it, advances the plan on an explicit
// proceed cue, pauses when paused, and otherwise describes the current step.
func Task(req *core.HandlerRequest) (core.Envelope, error) {
	persona, task := req.Persona, req.Task
	plan, stepIndex := task.CurrentPlan(), task.StepIndex()
	userMsg := strings.ToLower(req.UserMessage())

	var reasoning string
	if plan != nil && stepIndex < plan.Len() {
		step := plan.Steps[stepIndex].Description
		reasoning = persona.Style(fmt.Sprintf("%s reasoning: Considering step '%s' with tone %s.",
			capitalize(persona.ModeStyle(core.ModeTask)), step, strings.Join(persona.ToneModifiers(), ", ")), core.ModeTask)
	}

	if plan == nil || stepIndex >= plan.Len() {
		internal := reasoning
		if internal == "" {
			internal = persona.Style(fmt.Sprintf("%s internal: No plan present.", capitalize(persona.ModeStyle(core.ModeTask))), core.ModeTask)
		}
		if req.Flow.ShouldReflect || req.Flow.ShouldSummarize {
			summary := fmt.Sprintf("%s summary: All steps complete. Would you like a summary or next steps?", capitalize(persona.ModeStyle(core.ModeReflection)))
			resp := core.NewResponseEnvelope(req.Envelope, "reflection", persona.Style(summary, core.ModeReflection))
			resp.Payload.Internal = internal
			return resp, nil
		}
		note := fmt.Sprintf("%s note: No plan or all steps complete.", capitalize(persona.ModeStyle(core.ModeTask)))
		resp := core.NewResponseEnvelope(req.Envelope, "response", persona.Style(note, core.ModeTask))
		resp.Payload.Internal = internal
		return resp, nil
	}

	currentStep := plan.Steps[stepIndex].Description

	if req.Flow.ShouldRequestClarification {
		question := fmt.Sprintf("%s request: Could you clarify or provide more info for: '%s'?", capitalize(persona.ModeStyle(core.ModeTask)), currentStep)
		resp := core.NewResponseEnvelope(req.Envelope, "clarification", persona.Style(question, core.ModeTask))
		resp.Payload.Internal = reasoning
		return resp, nil
	}

	if req.Flow.ShouldAskQuestion {
		question := fmt.Sprintf("%s question: What details do you want for: '%s'?", capitalize(persona.ModeStyle(core.ModeTask)), currentStep)
		resp := core.NewResponseEnvelope(req.Envelope, "question", persona.Style(question, core.ModeTask))
		resp.Payload.Internal = reasoning
		return resp, nil
	}

	if req.Flow.ShouldContinuePlan && proceedCue(userMsg) {
		action := fmt.Sprintf("%s action: Executed step: %s", capitalize(persona.ModeStyle(core.ModeTask)), currentStep)
		resp := core.NewResponseEnvelope(req.Envelope, "response", persona.Style(action, core.ModeTask))
		resp.Payload.Internal = reasoning
		resp.Payload.StepComplete = true
		return resp, nil
	}

	if req.Flow.ShouldPausePlan {
		pause := fmt.Sprintf("%s pause: Pausing at step: %s until clarification.", capitalize(persona.ModeStyle(core.ModeTask)), currentStep)
		resp := core.NewResponseEnvelope(req.Envelope, "pause", persona.Style(pause, core.ModeTask))
		resp.Payload.Internal = reasoning
		return resp, nil
	}

	info := fmt.Sprintf("%s info: Current step: %s", capitalize(persona.ModeStyle(core.ModeTask)), currentStep)
	resp := core.NewResponseEnvelope(req.Envelope, "response", persona.Style(info, core.ModeTask))
	resp.Payload.Internal = reasoning
	return resp, nil
}

// Reflection summarizes plan progress and suggests next moves. It also
// serves the greeting, fallback and diagnostic modes; under fallback or
// diagnostic (or persona suppression) the render is forced neutral.
func Reflection(req *core.HandlerRequest) (core.Envelope, error) {
	persona, task := req.Persona, req.Task

	if req.Mode == core.ModeFallback || req.Mode == core.ModeDiagnostic || persona.Suppressed() {
		resp := core.NewResponseEnvelope(req.Envelope, "reflection", "[neutral | ] Routing to main agent.")
		resp.Payload.Internal = "[neutral | ] Diagnostic: fallback routing."
		return resp, nil
	}

	plan, stepIndex := task.CurrentPlan(), task.StepIndex()
	summary := fmt.Sprintf("%s reflection: Plan progress: %d completed, %d pending. ",
		capitalize(persona.ModeStyle(core.ModeReflection)), len(task.CompletedSteps()), len(task.PendingSteps()))
	if plan != nil && stepIndex < plan.Len() {
		summary += fmt.Sprintf("Next step: %s", plan.Steps[stepIndex].Description)
	} else {
		summary += "All steps complete."
	}

	internal := persona.Style(fmt.Sprintf("%s internal: Reviewing plan with tone %s.",
		capitalize(persona.ModeStyle(core.ModeReflection)), strings.Join(persona.ToneModifiers(), ", ")), core.ModeReflection)

	if req.Flow.ShouldSummarize {
		summary += " Would you like to continue, revise, or end the plan?"
	}
	if req.Flow.ShouldReflect {
		summary = fmt.Sprintf("%s meta: %s", capitalize(persona.ModeStyle(core.ModeReflection)), summary)
	}

	resp := core.NewResponseEnvelope(req.Envelope, "reflection", persona.Style(summary, core.ModeReflection))
	resp.Payload.Internal = internal
	return resp, nil
}

// ErrorRecovery repairs the plan and explains the recovery, inviting the
// user to describe what went wrong when clarification is wanted.
func ErrorRecovery(req *core.HandlerRequest) (core.Envelope, error) {
	persona := req.Persona

	if req.Mode == core.ModeFallback || req.Mode == core.ModeDiagnostic || persona.Suppressed() {
		resp := core.NewResponseEnvelope(req.Envelope, "error-recovery", "[neutral | ] Fallback: unable to process request.")
		resp.Payload.Internal = "[neutral | ] Diagnostic: fallback error recovery."
		return resp, nil
	}

	style := capitalize(persona.ModeStyle(core.ModeErrorRecovery))
	internal := persona.Style(fmt.Sprintf("%s internal: Repairing plan with tone %s. Signature: %s",
		style, strings.Join(persona.ToneModifiers(), ", "), strings.Join(persona.SignaturePhrases(), " ")), core.ModeErrorRecovery)

	explanation := fmt.Sprintf("%s recovery: Plan repaired. ", style)
	if req.Flow.ShouldAskQuestion || req.Flow.ShouldRequestClarification {
		explanation += "Could you tell me what went wrong or what you expected?"
	}
	if req.Flow.ShouldReflect {
		explanation += " Let's reflect on what led to the error."
	}

	resp := core.NewResponseEnvelope(req.Envelope, "error-recovery", persona.Style(explanation, core.ModeErrorRecovery))
	resp.Payload.Internal = internal
	resp.Metadata.PlanRepaired = true
	return resp, nil
}

// Onboarding walks a new session through its opening questions and announces
// readiness once no question is pending.
func Onboarding(req *core.HandlerRequest) (core.Envelope, error) {
	persona := req.Persona
	style := capitalize(persona.ModeStyle(core.ModeOnboarding))

	internal := persona.Style(fmt.Sprintf("%s internal: Initializing onboarding with tone %s.",
		style, strings.Join(persona.ToneModifiers(), ", ")), core.ModeOnboarding)

	if req.Flow.ShouldAskQuestion || req.Flow.ShouldRequestClarification {
		question := fmt.Sprintf("%s onboarding: What are your goals or preferences?", style)
		resp := core.NewResponseEnvelope(req.Envelope, "onboarding", persona.Style(question, core.ModeOnboarding))
		resp.Payload.Internal = internal
		return resp, nil
	}

	complete := fmt.Sprintf("%s onboarding: Onboarding complete! Planning context initialized. Ready to start your first task.", style)
	resp := core.NewResponseEnvelope(req.Envelope, "onboarding", persona.Style(complete, core.ModeOnboarding))
	resp.Payload.Internal = internal
	return resp, nil
}

// proceedCue reports whether the user explicitly asked to advance the plan.
func proceedCue(userMsg string) bool {
	return strings.Contains(userMsg, "proceed") || strings.Contains(userMsg, "next") || strings.Contains(userMsg, "continue")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
