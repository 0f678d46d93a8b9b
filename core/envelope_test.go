package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUserEnvelope(t *testing.T) {
	env := NewUserEnvelope("hello there")

	assert.Equal(t, "user", env.Sender)
	assert.Equal(t, "agent", env.Receiver)
	assert.Equal(t, "request", env.Intent)
	assert.Equal(t, "hello there", env.Payload.UserMessage)
	assert.NotEmpty(t, env.Metadata.TraceID)
	assert.False(t, env.Metadata.Timestamp.IsZero())
}

func TestNewResponseEnvelopeAddressesSender(t *testing.T) {
	req := NewUserEnvelope("do the thing")
	req.Metadata.Mode = ModeTask

	resp := NewResponseEnvelope(req, "response", "done")

	assert.Equal(t, "agent", resp.Sender)
	assert.Equal(t, "user", resp.Receiver)
	assert.Equal(t, "response", resp.Intent)
	assert.Equal(t, "done", resp.Payload.Result)
	assert.Equal(t, ModeTask, resp.Metadata.Mode)
	assert.NotEqual(t, req.Metadata.TraceID, resp.Metadata.TraceID)
}
