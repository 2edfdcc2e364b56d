package opensearch

// Config holds OpenSearch connection settings. The search index is optional
// wiring: an empty address list means the feature is off and no client is
// constructed.
type Config struct {
	Addresses    []string `env:"OPENSEARCH_ADDRESSES" envSeparator:","`
	Username     string   `env:"OPENSEARCH_USERNAME"`
	Password     string   `env:"OPENSEARCH_PASSWORD"`
	MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`
}

// Enabled reports whether any cluster address is configured.
func (c Config) Enabled() bool {
	return len(c.Addresses) > 0
}
