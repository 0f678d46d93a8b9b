package core

import (
	"time"

	"github.com/google/uuid"
)

// Payload carries the conversational content of an Envelope. Fields are a
// fixed schema rather than an open map so handlers and styling stages read
// declared fields instead of probing for keys. Extra holds anything a custom
// handler wants to pass through untouched.
type Payload struct {
	UserMessage  string         `json:"user_message,omitempty"`
	Result       string         `json:"result,omitempty"`
	Internal     string         `json:"internal,omitempty"`
	StepComplete bool           `json:"step_complete,omitempty"`
	Correction   string         `json:"correction,omitempty"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// Metadata carries cross-cutting turn context attached to an Envelope:
// correlation identifiers, the mode and handler that produced a response,
// routing diagnostics and handler-reported signal flags. Handler-reported
// Contradiction / MissingInformation feed the meta-reasoning stage.
type Metadata struct {
	TraceID            string    `json:"trace_id"`
	Timestamp          time.Time `json:"timestamp"`
	Mode               Mode      `json:"mode,omitempty"`
	Handler            string    `json:"handler,omitempty"`
	RoutingTrace       []string  `json:"routing_trace,omitempty"`
	SignatureRequired  bool      `json:"signature_required,omitempty"`
	PersonaVoice       string    `json:"persona_voice,omitempty"`
	Contradiction      bool      `json:"contradiction,omitempty"`
	MissingInformation bool      `json:"missing_information,omitempty"`
	PlanRepaired       bool      `json:"plan_repaired,omitempty"`
}

// Envelope is the message passed through the pipeline. It is created once
// per turn by the cognitive loop, mutated by the dispatched handler and read
// by the styling and persona-memory stages afterwards.
type Envelope struct {
	Sender   string   `json:"sender"`
	Receiver string   `json:"receiver"`
	Intent   string   `json:"intent"`
	Payload  Payload  `json:"payload"`
	Metadata Metadata `json:"metadata"`
}

// NewEnvelope creates an envelope with a fresh trace id and UTC timestamp.
func NewEnvelope(sender, receiver, intent string) Envelope {
	return Envelope{
		Sender:   sender,
		Receiver: receiver,
		Intent:   intent,
		Metadata: Metadata{TraceID: NewID(), Timestamp: time.Now().UTC()},
	}
}

// NewUserEnvelope wraps a raw user message for routing.
func NewUserEnvelope(message string) Envelope {
	e := NewEnvelope("user", "agent", "request")
	e.Payload.UserMessage = message
	return e
}

// NewResponseEnvelope builds a handler response addressed back to the sender
// of the request envelope.
func NewResponseEnvelope(req Envelope, intent, result string) Envelope {
	e := NewEnvelope(req.Receiver, req.Sender, intent)
	e.Payload.Result = result
	e.Metadata.Mode = req.Metadata.Mode
	return e
}

// NewID generates a unique identifier for envelope correlation.
func NewID() string { return uuid.NewString() }
