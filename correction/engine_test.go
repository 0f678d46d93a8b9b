package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/internal/testutil"
	"github.com/hupe1980/personamesh/memory"
	"github.com/hupe1980/personamesh/mode"
	"github.com/hupe1980/personamesh/task"
)

func TestContradictionClearsTaskContext(t *testing.T) {
	tc := task.NewContext()
	tc.SetTask("draft report")
	tc.SetPlan(testutil.Plan("one"), 0, 0.9)

	e := NewEngine()
	e.ReviseTaskContext(tc, core.MetaSignals{Contradiction: true})

	assert.Equal(t, "", tc.CurrentTask())
	assert.Nil(t, tc.CurrentPlan())
	require.Len(t, e.Corrections(), 1)
	assert.Equal(t, "task context cleared due to contradiction", e.Corrections()[0])
}

func TestMissingInfoResetsOnlyQuestionsAndParameters(t *testing.T) {
	tc := task.NewContext()
	tc.SetTask("draft report")
	tc.AddUnresolvedQuestion("for whom?")
	tc.SetParameter("format", "pdf")

	e := NewEngine()
	e.ReviseTaskContext(tc, core.MetaSignals{MissingInformation: true})

	assert.Equal(t, "draft report", tc.CurrentTask())
	assert.Empty(t, tc.UnresolvedQuestions())
	_, ok := tc.Parameter("format")
	assert.False(t, ok)
}

func TestInstabilityRebuildsTaskContext(t *testing.T) {
	tc := task.NewContext()
	tc.SetTask("draft report")

	e := NewEngine()
	e.ReviseTaskContext(tc, core.MetaSignals{Stability: &core.StabilitySignals{RunawayLoop: true, StabilityScore: 0.6}})

	assert.Equal(t, "", tc.CurrentTask())
}

func TestUnstableStatePrunesOldestMessage(t *testing.T) {
	mem := memory.New()
	mem.AddUserMessage(memory.UserMessage{Message: "first"})
	mem.AddUserMessage(memory.UserMessage{Message: "second"})

	e := NewEngine()
	e.PruneMemory(mem, core.MetaSignals{UnstableState: true})

	snap := mem.Snapshot()
	require.Len(t, snap.UserMessages, 1)
	assert.Equal(t, "second", snap.UserMessages[0].Message)
}

func TestOverloadClearsConversation(t *testing.T) {
	mem := memory.New()
	mem.AddUserMessage(memory.UserMessage{Message: "first"})
	mem.AddAgentResponse(memory.AgentResponse{Text: "hi"})

	e := NewEngine()
	e.PruneMemory(mem, core.MetaSignals{Stability: &core.StabilitySignals{MemoryOverload: true, StabilityScore: 0.8}})

	assert.Equal(t, 0, mem.UserMessageCount())
}

func TestLowScoreClearsConversation(t *testing.T) {
	mem := memory.New()
	mem.AddUserMessage(memory.UserMessage{Message: "first"})

	e := NewEngine()
	e.PruneMemory(mem, core.MetaSignals{Stability: &core.StabilitySignals{StabilityScore: 0.4}})

	assert.Equal(t, 0, mem.UserMessageCount())
}

func TestResetModeForcesReflection(t *testing.T) {
	mm := mode.NewManager(core.ModeTask)

	e := NewEngine()
	e.ResetMode(mm, core.MetaSignals{UnstableState: true})

	assert.Equal(t, core.ModeReflection, mm.Current())
	require.Len(t, mm.Log(), 1)
	assert.Equal(t, "forced reset: unstable state", mm.Log()[0].Reason)

	// Already in reflection: no duplicate transition.
	e.ResetMode(mm, core.MetaSignals{UnstableState: true})
	assert.Len(t, mm.Log(), 1)
}

func TestRefineOutputAnnotations(t *testing.T) {
	e := NewEngine()

	out := core.NewUserEnvelope("")
	e.RefineOutput(&out, core.MetaSignals{Contradiction: true})
	assert.Equal(t, "Output revised due to contradiction.", out.Payload.Correction)

	out = core.NewUserEnvelope("")
	e.RefineOutput(&out, core.MetaSignals{Stability: &core.StabilitySignals{StabilityScore: 0.2}})
	assert.Equal(t, "Output simplified due to instability.", out.Payload.Correction)

	out = core.NewUserEnvelope("")
	e.RefineOutput(&out, core.MetaSignals{})
	assert.Empty(t, out.Payload.Correction)

	e.RefineOutput(nil, core.MetaSignals{Contradiction: true})
}

func TestApplyIsIdempotent(t *testing.T) {
	tc := task.NewContext()
	tc.SetTask("draft report")
	mem := memory.New()
	mem.AddUserMessage(memory.UserMessage{Message: "hello"})
	mm := mode.NewManager(core.ModeTask)
	signals := core.MetaSignals{
		Contradiction: true,
		UnstableState: true,
		Stability:     &core.StabilitySignals{StabilityScore: 0.3},
	}

	e := NewEngine()
	e.Apply(tc, mem, mm, signals)
	e.Apply(tc, mem, mm, signals)

	assert.Equal(t, "", tc.CurrentTask())
	assert.Equal(t, 0, mem.UserMessageCount())
	assert.Equal(t, core.ModeReflection, mm.Current())
}
