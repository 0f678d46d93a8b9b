package memory

import (
	"time"

	"github.com/hupe1980/personamesh/core"
)

// DefaultWindowSize is the default maximum length of each memory window.
const DefaultWindowSize = 10

// UserMessage is one remembered user utterance with the classifier intent it
// was labeled with at the time.
type UserMessage struct {
	Message string    `json:"message"`
	Intent  string    `json:"intent,omitempty"`
	At      time.Time `json:"at"`
}

// AgentResponse is one remembered agent reply.
type AgentResponse struct {
	Text    string    `json:"text"`
	Handler string    `json:"handler,omitempty"`
	At      time.Time `json:"at"`
}

// Snapshot is a point-in-time copy of all four windows. It is
// JSON-compatible and safe to retain across turns.
type Snapshot struct {
	UserMessages      []UserMessage           `json:"user_messages"`
	AgentResponses    []AgentResponse         `json:"agent_responses"`
	ClassifierOutputs []core.ClassifierResult `json:"classifier_outputs"`
	ModeTransitions   []core.ModeTransition   `json:"mode_transitions"`
}

// Options configure window capacities.
type Options struct {
	MaxUserMessages      int
	MaxAgentResponses    int
	MaxClassifierOutputs int
	MaxModeTransitions   int
}

// ShortTermMemory is a per-session rolling history store. It is exclusively
// owned by one session; callers serialize turns, so no internal locking is
// performed.
type ShortTermMemory struct {
	userMessages      []UserMessage
	agentResponses    []AgentResponse
	classifierOutputs []core.ClassifierResult
	modeTransitions   []core.ModeTransition

	maxUserMessages      int
	maxAgentResponses    int
	maxClassifierOutputs int
	maxModeTransitions   int
}

// New constructs a ShortTermMemory with optional capacity overrides. All
// windows default to DefaultWindowSize.
func New(optFns ...func(o *Options)) *ShortTermMemory {
	opts := Options{
		MaxUserMessages:      DefaultWindowSize,
		MaxAgentResponses:    DefaultWindowSize,
		MaxClassifierOutputs: DefaultWindowSize,
		MaxModeTransitions:   DefaultWindowSize,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ShortTermMemory{
		maxUserMessages:      opts.MaxUserMessages,
		maxAgentResponses:    opts.MaxAgentResponses,
		maxClassifierOutputs: opts.MaxClassifierOutputs,
		maxModeTransitions:   opts.MaxModeTransitions,
	}
}

// AddUserMessage appends a user message, evicting the oldest on overflow.
func (m *ShortTermMemory) AddUserMessage(msg UserMessage) {
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}
	m.userMessages = append(m.userMessages, msg)
	if len(m.userMessages) > m.maxUserMessages {
		m.userMessages = m.userMessages[1:]
	}
}

// AddAgentResponse appends an agent response, evicting the oldest on overflow.
func (m *ShortTermMemory) AddAgentResponse(resp AgentResponse) {
	if resp.At.IsZero() {
		resp.At = time.Now().UTC()
	}
	m.agentResponses = append(m.agentResponses, resp)
	if len(m.agentResponses) > m.maxAgentResponses {
		m.agentResponses = m.agentResponses[1:]
	}
}

// AddClassifierOutput appends a classifier result, evicting the oldest on overflow.
func (m *ShortTermMemory) AddClassifierOutput(out core.ClassifierResult) {
	m.classifierOutputs = append(m.classifierOutputs, out)
	if len(m.classifierOutputs) > m.maxClassifierOutputs {
		m.classifierOutputs = m.classifierOutputs[1:]
	}
}

// AddModeTransition appends a mode transition, evicting the oldest on overflow.
func (m *ShortTermMemory) AddModeTransition(t core.ModeTransition) {
	if t.At.IsZero() {
		t.At = time.Now().UTC()
	}
	m.modeTransitions = append(m.modeTransitions, t)
	if len(m.modeTransitions) > m.maxModeTransitions {
		m.modeTransitions = m.modeTransitions[1:]
	}
}

// UserMessageCount returns the number of user messages currently held.
func (m *ShortTermMemory) UserMessageCount() int { return len(m.userMessages) }

// DropOldestUserMessage removes the single oldest user message, if any. Used
// by the self-correction engine's pruning step.
func (m *ShortTermMemory) DropOldestUserMessage() bool {
	if len(m.userMessages) == 0 {
		return false
	}
	m.userMessages = m.userMessages[1:]
	return true
}

// ClearConversation empties the user-message and agent-response windows,
// leaving classifier and mode history intact. Stability-driven correction
// uses this for overload recovery.
func (m *ShortTermMemory) ClearConversation() {
	m.userMessages = nil
	m.agentResponses = nil
}

// Clear empties all four windows.
func (m *ShortTermMemory) Clear() {
	m.userMessages = nil
	m.agentResponses = nil
	m.classifierOutputs = nil
	m.modeTransitions = nil
}

// Snapshot returns a defensive copy of all windows.
func (m *ShortTermMemory) Snapshot() Snapshot {
	s := Snapshot{
		UserMessages:      make([]UserMessage, len(m.userMessages)),
		AgentResponses:    make([]AgentResponse, len(m.agentResponses)),
		ClassifierOutputs: make([]core.ClassifierResult, len(m.classifierOutputs)),
		ModeTransitions:   make([]core.ModeTransition, len(m.modeTransitions)),
	}
	copy(s.UserMessages, m.userMessages)
	copy(s.AgentResponses, m.agentResponses)
	copy(s.ClassifierOutputs, m.classifierOutputs)
	copy(s.ModeTransitions, m.modeTransitions)
	return s
}

// Restore replaces all windows from a snapshot, truncating to capacity.
func (m *ShortTermMemory) Restore(s Snapshot) {
	m.userMessages = trimHead(s.UserMessages, m.maxUserMessages)
	m.agentResponses = trimHead(s.AgentResponses, m.maxAgentResponses)
	m.classifierOutputs = trimHead(s.ClassifierOutputs, m.maxClassifierOutputs)
	m.modeTransitions = trimHead(s.ModeTransitions, m.maxModeTransitions)
}

// trimHead keeps the newest max entries of in, copying to detach from the
// caller's backing array.
func trimHead[T any](in []T, max int) []T {
	if len(in) > max {
		in = in[len(in)-max:]
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
