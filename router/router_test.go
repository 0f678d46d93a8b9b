package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/personamesh/core"
	"github.com/hupe1980/personamesh/internal/testutil"
)

func namedHandler(name string) core.Handler {
	return func(req *core.HandlerRequest) (core.Envelope, error) {
		return core.NewResponseEnvelope(req.Envelope, "response", name), nil
	}
}

func TestFirstDispatchForcesOnboarding(t *testing.T) {
	r := New()
	r.Register(core.ModeOnboarding, "onboarding", namedHandler("onboarding says hi"))
	r.Register(core.ModeTask, "task", namedHandler("task output"))

	resp := r.Dispatch(testutil.NewRequestBuilder("do the thing").Mode(core.ModeTask).Build())

	assert.Equal(t, "onboarding says hi", resp.Payload.Result)
	assert.Equal(t, "onboarding", resp.Metadata.Handler)
	require.Len(t, resp.Metadata.RoutingTrace, 1)
	assert.Equal(t, "onboarding: first turn: onboarding forced", resp.Metadata.RoutingTrace[0])
}

func TestDispatchByMode(t *testing.T) {
	r := New()
	r.Register(core.ModeOnboarding, "onboarding", namedHandler("onboarding says hi"))
	r.Register(core.ModeTask, "task", namedHandler("task output"))

	r.Dispatch(testutil.NewRequestBuilder("hi").Mode(core.ModeOnboarding).Build())
	resp := r.Dispatch(testutil.NewRequestBuilder("do the thing").Mode(core.ModeTask).Build())

	assert.Equal(t, "task output", resp.Payload.Result)
	assert.Equal(t, "task", resp.Metadata.Handler)
	assert.Equal(t, core.ModeTask, resp.Metadata.Mode)
}

func TestUnknownModeFallsBack(t *testing.T) {
	r := New()
	r.Register(core.ModeOnboarding, "onboarding", namedHandler("onboarding"))
	r.SetFallback("fallback", namedHandler("fallback output"))

	r.Dispatch(testutil.NewRequestBuilder("hi").Mode(core.ModeOnboarding).Build())
	resp := r.Dispatch(testutil.NewRequestBuilder("?").Mode(core.ModeDiagnostic).Build())

	assert.Equal(t, "fallback output", resp.Payload.Result)

	log := r.Log()
	require.Len(t, log, 2)
	assert.True(t, log[1].Fallback)
	assert.Equal(t, "fallback", log[1].Handler)
}

func TestHandlerErrorIsAbsorbed(t *testing.T) {
	r := New()
	r.Register(core.ModeOnboarding, "onboarding", namedHandler("onboarding"))
	r.Register(core.ModeTask, "broken", func(*core.HandlerRequest) (core.Envelope, error) {
		return core.Envelope{}, errors.New("boom")
	})

	r.Dispatch(testutil.NewRequestBuilder("hi").Mode(core.ModeOnboarding).Build())
	resp := r.Dispatch(testutil.NewRequestBuilder("do it").Mode(core.ModeTask).Build())

	assert.Equal(t, "[neutral | ] Something went wrong handling that; let's try again.", resp.Payload.Result)
	assert.Equal(t, "broken", resp.Metadata.Handler)
}

func TestHandlerPanicIsAbsorbed(t *testing.T) {
	r := New()
	r.Register(core.ModeOnboarding, "onboarding", namedHandler("onboarding"))
	r.Register(core.ModeTask, "panicky", func(*core.HandlerRequest) (core.Envelope, error) {
		panic("unexpected state")
	})

	r.Dispatch(testutil.NewRequestBuilder("hi").Mode(core.ModeOnboarding).Build())

	var resp core.Envelope
	assert.NotPanics(t, func() {
		resp = r.Dispatch(testutil.NewRequestBuilder("do it").Mode(core.ModeTask).Build())
	})
	assert.Contains(t, resp.Payload.Result, "[neutral | ]")
}

func TestNoHandlerNoFallback(t *testing.T) {
	r := New()

	resp := r.Dispatch(testutil.NewRequestBuilder("hello?").Mode(core.ModeTask).Build())

	assert.Equal(t, "[neutral | ] No handler is available for this request.", resp.Payload.Result)
	assert.Empty(t, resp.Metadata.Handler)
}

func TestResolve(t *testing.T) {
	r := New()

	_, err := r.Resolve(core.ModeTask)
	assert.ErrorIs(t, err, core.ErrNoHandler)

	r.Register(core.ModeTask, "task", namedHandler("task output"))
	name, err := r.Resolve(core.ModeTask)
	require.NoError(t, err)
	assert.Equal(t, "task", name)

	// Unbound modes resolve to the fallback once one is installed.
	_, err = r.Resolve(core.ModeReflection)
	assert.ErrorIs(t, err, core.ErrNoHandler)
	r.SetFallback("fallback", namedHandler("fallback output"))
	name, err = r.Resolve(core.ModeReflection)
	require.NoError(t, err)
	assert.Equal(t, "fallback", name)
}

func TestRegisterReplacesBinding(t *testing.T) {
	r := New()
	r.Register(core.ModeOnboarding, "onboarding", namedHandler("onboarding"))
	r.Register(core.ModeTask, "first", namedHandler("first"))
	r.Register(core.ModeTask, "second", namedHandler("second"))

	r.Dispatch(testutil.NewRequestBuilder("hi").Mode(core.ModeOnboarding).Build())
	resp := r.Dispatch(testutil.NewRequestBuilder("go").Mode(core.ModeTask).Build())

	assert.Equal(t, "second", resp.Payload.Result)
}
