package openai

import (
	"testing"

	openaisdk "github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/personamesh/model"
)

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test-key" })
	require.NotNil(t, m.client)
	assert.Equal(t, openaisdk.ChatModelGPT4oMini, m.opts.Model)
	assert.InDelta(t, 0.7, m.opts.Temperature, 1e-9)
	assert.Equal(t, int64(4096), m.opts.MaxCompletionTokens)
}

func TestNewModelOverrides(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.APIKey = "test-key"
		o.Model = openaisdk.ChatModelGPT4o
		o.Temperature = 0.2
		o.MaxCompletionTokens = 1024
	})

	assert.Equal(t, openaisdk.ChatModelGPT4o, m.opts.Model)
	assert.InDelta(t, 0.2, m.opts.Temperature, 1e-9)
	assert.Equal(t, int64(1024), m.opts.MaxCompletionTokens)
}

func TestModelInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test-key" })
	assert.Equal(t, model.Info{
		Name:     openaisdk.ChatModelGPT4oMini,
		Provider: "openai",
	}, m.Info())
}

func TestNewModelFromClient(t *testing.T) {
	client := openaisdk.NewClient()
	m := NewModelFromClient(&client, func(o *Options) { o.Temperature = 0.1 })
	require.NotNil(t, m.client)
	assert.Same(t, &client, m.client)
	assert.InDelta(t, 0.1, m.opts.Temperature, 1e-9)
}
