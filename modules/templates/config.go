package templates

// Config carries the template module settings read from the environment.
type Config struct {
	// PreviewCacheSize bounds the in-process render cache.
	PreviewCacheSize int `env:"TEMPLATES_PREVIEW_CACHE_SIZE" envDefault:"128"`

	// GeneratePerMinute caps LLM generation calls per user. Generation is
	// the expensive path; CRUD stays unthrottled.
	GeneratePerMinute int `env:"TEMPLATES_GENERATE_PER_MINUTE" envDefault:"5"`

	// SearchLimit is the default page size for search results.
	SearchLimit int `env:"TEMPLATES_SEARCH_LIMIT" envDefault:"20"`
}
