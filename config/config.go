// Package config loads runtime configuration from the environment, with an
// optional .env file for local development. All values have working defaults
// so a zero-configuration start always succeeds.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of a PersonaMesh process.
type Config struct {
	// Provider selects the LLM backend: "anthropic", "openai" or "mock".
	Provider string

	// ModelID overrides the provider's default model.
	ModelID string

	AnthropicAPIKey string
	OpenAIAPIKey    string

	// DataDir is the base directory for persisted sessions and meetings.
	DataDir string

	// MemoryWindow bounds each short-term memory sequence.
	MemoryWindow int

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load(files ...string) (*Config, error) {
	// Missing .env files are fine; explicit files must load.
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, err
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Provider:        getEnv("PERSONAMESH_PROVIDER", "mock"),
		ModelID:         os.Getenv("PERSONAMESH_MODEL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		DataDir:         getEnv("PERSONAMESH_DATA_DIR", "./data"),
		MemoryWindow:    getEnvInt("PERSONAMESH_MEMORY_WINDOW", 10),
		LogLevel:        getEnv("PERSONAMESH_LOG_LEVEL", "info"),
		LogFormat:       getEnv("PERSONAMESH_LOG_FORMAT", "text"),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
