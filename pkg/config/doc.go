// Package config loads application configuration from environment variables
// into tagged structs.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: a .env
// file is loaded once per process if present, env.Parse fills the struct, and
// each config type is cached so it is parsed at most once for the process
// lifetime.
//
// Declare a struct with `env` tags and load it:
//
//	type AnthropicConfig struct {
//	    APIKey string `env:"ANTHROPIC_API_KEY,required"`
//	    Model  string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
//	}
//
//	var cfg AnthropicConfig
//	config.MustLoad(&cfg)
//
// Missing required variables surface as ErrParsingConfig, which MustLoad turns
// into a startup panic.
package config
