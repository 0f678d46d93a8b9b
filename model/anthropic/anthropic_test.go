package anthropic

import (
	"testing"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/personamesh/model"
)

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test-key" })

	assert.Equal(t, anthropicsdk.ModelClaude3_5Sonnet20241022, m.opts.Model)
	assert.Equal(t, 0.7, m.opts.Temperature)
	assert.Equal(t, int64(4096), m.opts.MaxTokens)
}

func TestNewModelOverrides(t *testing.T) {
	m := NewModel(func(o *Options) {
		o.APIKey = "test-key"
		o.Model = anthropicsdk.ModelClaude3_5HaikuLatest
		o.Temperature = 0.2
		o.MaxTokens = 1024
	})

	assert.Equal(t, anthropicsdk.ModelClaude3_5HaikuLatest, m.opts.Model)
	assert.Equal(t, 0.2, m.opts.Temperature)
	assert.Equal(t, int64(1024), m.opts.MaxTokens)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test-key" })

	assert.Equal(t, model.Info{
		Name:     string(anthropicsdk.ModelClaude3_5Sonnet20241022),
		Provider: "anthropic",
	}, m.Info())
}

func TestNewModelFromClient(t *testing.T) {
	client := anthropicsdk.NewClient()
	m := NewModelFromClient(&client)

	assert.NotNil(t, m.client)
	assert.Equal(t, "anthropic", m.Info().Provider)
}
