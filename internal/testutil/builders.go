// Package testutil provides fluent fixture builders shared by package tests.
package testutil

import (
	"github.com/hupe1980/personamesh/core"
)

// ResultBuilder constructs classifier results in tests.
// Example:
//
//	res := testutil.NewResultBuilder().Intent("task").Confidence(0.9).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type ResultBuilder struct {
	result core.ClassifierResult
}

// NewResultBuilder creates a builder defaulting to a confident task intent.
func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{result: core.ClassifierResult{Intent: "task", Confidence: 0.9}}
}

// Intent sets the predicted intent (chainable).
func (b *ResultBuilder) Intent(i string) *ResultBuilder { b.result.Intent = i; return b }

// Confidence sets the confidence score (chainable).
func (b *ResultBuilder) Confidence(c float64) *ResultBuilder { b.result.Confidence = c; return b }

// Ambiguous raises the ambiguity flag (chainable).
func (b *ResultBuilder) Ambiguous() *ResultBuilder { b.result.Signals.Ambiguous = true; return b }

// Contradiction raises the contradiction flag (chainable).
func (b *ResultBuilder) Contradiction() *ResultBuilder {
	b.result.Signals.Contradiction = true
	return b
}

// MissingInfo raises the missing-info flag (chainable).
func (b *ResultBuilder) MissingInfo() *ResultBuilder { b.result.Signals.MissingInfo = true; return b }

// Error raises the error flag (chainable).
func (b *ResultBuilder) Error() *ResultBuilder { b.result.Signals.Error = true; return b }

// Build returns the assembled result.
func (b *ResultBuilder) Build() core.ClassifierResult { return b.result }

// RequestBuilder constructs handler requests in tests.
type RequestBuilder struct {
	req core.HandlerRequest
}

// NewRequestBuilder creates a builder around a user message in task mode.
func NewRequestBuilder(userMessage string) *RequestBuilder {
	return &RequestBuilder{req: core.HandlerRequest{
		Envelope: core.NewUserEnvelope(userMessage),
		Mode:     core.ModeTask,
	}}
}

// Mode sets the resolved mode (chainable).
func (b *RequestBuilder) Mode(m core.Mode) *RequestBuilder { b.req.Mode = m; return b }

// Flow sets the flow signals (chainable).
func (b *RequestBuilder) Flow(f core.FlowSignals) *RequestBuilder { b.req.Flow = f; return b }

// Meta sets the meta signals (chainable).
func (b *RequestBuilder) Meta(m core.MetaSignals) *RequestBuilder { b.req.Meta = m; return b }

// Persona sets the persona view (chainable).
func (b *RequestBuilder) Persona(p core.PersonaView) *RequestBuilder { b.req.Persona = p; return b }

// Task sets the task view (chainable).
func (b *RequestBuilder) Task(t core.TaskView) *RequestBuilder { b.req.Task = t; return b }

// Build returns the assembled request.
func (b *RequestBuilder) Build() *core.HandlerRequest {
	req := b.req
	return &req
}

// FixedClassifier returns a canned result for every message; useful for
// driving the loop through specific mode paths.
type FixedClassifier struct {
	Result core.ClassifierResult
}

// Classify implements core.Classifier.
func (f FixedClassifier) Classify(string) core.ClassifierResult { return f.Result }

// Plan builds a pending plan from step descriptions.
func Plan(steps ...string) *core.Plan {
	p := &core.Plan{}
	for _, s := range steps {
		p.Steps = append(p.Steps, core.Step{Description: s, Status: core.StepPending})
	}
	return p
}
