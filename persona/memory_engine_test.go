package persona

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/personamesh/core"
)

func TestExtractFeaturesFromStyledOutput(t *testing.T) {
	ctx := NewContext()
	e := NewMemoryEngine(ctx)

	e.extractFeatures("[concise | confident, warm] Current step: Design solution\n- PersonaMesh")

	require.Len(t, ctx.StyleHistory(), 1)
	assert.Equal(t, "concise", ctx.StyleHistory()[0].Style)
	require.Len(t, ctx.ToneHistory(), 1)
	assert.Equal(t, []string{"confident", "warm"}, ctx.ToneHistory()[0].Tones)
	require.Len(t, ctx.SignaturesUsed(), 1)
	assert.Equal(t, "- PersonaMesh", ctx.SignaturesUsed()[0].Signature)
}

func TestExtractFeaturesIgnoresUnstyledText(t *testing.T) {
	ctx := NewContext()
	e := NewMemoryEngine(ctx)

	e.extractFeatures("plain text without a persona header")

	assert.Empty(t, ctx.StyleHistory())
	assert.Empty(t, ctx.ToneHistory())
}

func TestReinforceTonePromotesDominantTone(t *testing.T) {
	ctx := NewContext()
	e := NewMemoryEngine(ctx)
	ctx.toneHistory = []ToneEntry{
		{Tones: []string{"warm"}},
		{Tones: []string{"playful", "warm"}},
		{Tones: []string{"warm"}},
	}

	e.reinforceTone()

	assert.Equal(t, []string{"confident", "warm"}, ctx.ToneModifiers())

	// Already active: no duplicate.
	e.reinforceTone()
	assert.Len(t, ctx.ToneModifiers(), 2)
}

func TestStrengthenSignaturePromotesMostUsed(t *testing.T) {
	ctx := NewContext()
	e := NewMemoryEngine(ctx)
	ctx.signaturesUsed = []SignatureEntry{
		{Signature: "- cheers"},
		{Signature: "- PersonaMesh"},
		{Signature: "- PersonaMesh"},
	}

	e.strengthenSignature()

	assert.Equal(t, []string{"- PersonaMesh"}, ctx.SignaturePhrases())
}

func TestAdaptToUserShiftsRegister(t *testing.T) {
	ctx := NewContext()
	e := NewMemoryEngine(ctx)

	e.AdaptToUser("Therefore, we must consider the consequences.")
	assert.Equal(t, "formal", ctx.VoiceStyle())
	pref, _ := ctx.UserPreference("formality")
	assert.Equal(t, "formal", pref)
	// Direct shift: mode overrides keep their original style.
	assert.Equal(t, "concise", ctx.ModeStyle(core.ModeTask))

	e.AdaptToUser("hey cool thanks")
	assert.Equal(t, "casual", ctx.VoiceStyle())

	e.AdaptToUser("no register markers here")
	assert.Equal(t, "casual", ctx.VoiceStyle(), "no signal leaves the voice untouched")
}

func TestMaintainCoherenceRevertsWhileStable(t *testing.T) {
	ctx := NewContext()
	e := NewMemoryEngine(ctx)
	ctx.styleHistory = []StyleEntry{{Style: "concise"}, {Style: "concise"}, {Style: "formal"}}

	e.maintainCoherence()

	h := ctx.StyleHistory()
	assert.Equal(t, "concise", h[2].Style)
	assert.Equal(t, "concise", ctx.VoiceStyle())
	assert.InDelta(t, 0.95, ctx.Evolution().Stability, 1e-9)
}

func TestMaintainCoherenceAllowsShiftWhileUnstable(t *testing.T) {
	ctx := NewContext()
	ctx.SetStability(0.4)
	e := NewMemoryEngine(ctx)
	ctx.styleHistory = []StyleEntry{{Style: "concise"}, {Style: "concise"}, {Style: "formal"}}

	e.maintainCoherence()

	assert.Equal(t, "formal", ctx.StyleHistory()[2].Style)
	assert.InDelta(t, 0.42, ctx.Evolution().Stability, 1e-9)
}

func TestMaintainCoherenceNeedsHistory(t *testing.T) {
	ctx := NewContext()
	e := NewMemoryEngine(ctx)
	ctx.styleHistory = []StyleEntry{{Style: "concise"}, {Style: "formal"}}

	e.maintainCoherence()

	assert.Equal(t, "formal", ctx.StyleHistory()[1].Style, "two entries are not enough to judge drift")
}

func TestObserveAndUpdateStampsLastUpdate(t *testing.T) {
	ctx := NewContext()
	e := NewMemoryEngine(ctx)

	e.ObserveAndUpdate("[concise | confident] Current step: Gather requirements\n", "let's plan the launch")

	assert.False(t, ctx.Evolution().LastUpdate.IsZero())
	assert.Len(t, ctx.StyleHistory(), 1)
}

func TestRepeatedFormalMarkersEventuallyShiftVoice(t *testing.T) {
	ctx := NewContext()
	ctx.SetStability(0.4)
	e := NewMemoryEngine(ctx)
	styler := NewStyler(ctx)

	for i := 0; i < 3; i++ {
		out := styler.Style(fmt.Sprintf("Step %d acknowledged.", i), core.ModeTask)
		e.ObserveAndUpdate(out, "Therefore, proceed with the analysis.")
	}

	assert.Equal(t, "formal", ctx.VoiceStyle())
	pref, _ := ctx.UserPreference("formality")
	assert.Equal(t, "formal", pref)
}

func TestMostFrequentTieResolvesToEarliest(t *testing.T) {
	got := mostFrequent(func(yield func(string)) {
		yield("b")
		yield("a")
		yield("a")
		yield("b")
	})
	assert.Equal(t, "b", got)

	assert.Equal(t, "", mostFrequent(func(func(string)) {}))
}
