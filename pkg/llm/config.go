package llm

import "time"

// Config carries the Anthropic provider settings read from the environment.
// A missing API key fails at startup through config.Load's required check.
type Config struct {
	APIKey         string        `env:"ANTHROPIC_API_KEY,required"`
	Model          string        `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	MaxTokens      int64         `env:"ANTHROPIC_MAX_TOKENS" envDefault:"8192"`
	RequestTimeout time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"120s"`
}
