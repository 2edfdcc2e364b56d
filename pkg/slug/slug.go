package slug

import (
	"crypto/rand"
	"strings"
	"unicode"
)

// Option configures slug generation.
type Option func(*config)

type config struct {
	maxLength    int
	separator    string
	lowercase    bool
	suffixLength int
}

func defaultConfig() *config {
	return &config{separator: "-", lowercase: true}
}

// MaxLength truncates the slug to at most n runes, suffix included.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Separator overrides the default "-" separator.
func Separator(s string) Option {
	return func(c *config) { c.separator = s }
}

// Lowercase controls case folding. Enabled by default.
func Lowercase(enabled bool) Option {
	return func(c *config) { c.lowercase = enabled }
}

// WithSuffix appends a random alphanumeric suffix of the given length to
// reduce collision chances between slugs made from the same input.
func WithSuffix(length int) Option {
	return func(c *config) { c.suffixLength = length }
}

// Make converts s into a URL-safe slug. Runs of non-alphanumeric characters
// collapse into a single separator, Latin diacritics fold to ASCII, and the
// result never starts or ends with a separator.
func Make(s string, opts ...Option) string {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	b.Grow(len(s))

	sepRunes := len([]rune(cfg.separator))
	pendingSep := false
	count := 0

loop:
	for _, r := range s {
		if cfg.maxLength > 0 && count >= cfg.maxLength {
			break
		}
		if folded, ok := foldTable[r]; ok {
			r = folded
		}
		if cfg.lowercase {
			r = unicode.ToLower(r)
		}
		if !isAlnum(r) {
			// Separator is written lazily so the slug never ends with one.
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			if cfg.maxLength > 0 && count+sepRunes+1 > cfg.maxLength {
				break loop
			}
			b.WriteString(cfg.separator)
			count += sepRunes
			pendingSep = false
		}
		b.WriteRune(r)
		count++
	}

	result := b.String()
	if cfg.suffixLength == 0 {
		return result
	}

	suffixLen := cfg.suffixLength
	if cfg.maxLength > 0 && suffixLen > cfg.maxLength {
		suffixLen = cfg.maxLength
	}
	if cfg.maxLength > 0 {
		keep := cfg.maxLength - sepRunes - suffixLen
		if runes := []rune(result); len(runes) > keep {
			if keep > 0 {
				result = string(runes[:keep])
			} else {
				result = ""
			}
		}
	}

	suffix := randomSuffix(suffixLen, cfg.lowercase)
	if result == "" {
		return suffix
	}
	return result + cfg.separator + suffix
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// foldTable maps common Latin diacritics to ASCII equivalents. Built from
// per-letter groups; not exhaustive beyond the major European languages.
var foldTable = buildFoldTable(map[rune]string{
	'a': "àáâãäåāăąæ",
	'A': "ÀÁÂÃÄÅĀĂĄÆ",
	'c': "çćč",
	'C': "ÇĆČ",
	'd': "ďđ",
	'D': "ĎĐ",
	'e': "èéêëēėęě",
	'E': "ÈÉÊËĒĖĘĚ",
	'i': "ìíîïīį",
	'I': "ÌÍÎÏĪĮ",
	'l': "ł",
	'L': "Ł",
	'n': "ñńň",
	'N': "ÑŃŇ",
	'o': "òóôõöøōœ",
	'O': "ÒÓÔÕÖØŌŒ",
	'r': "ř",
	'R': "Ř",
	's': "śšșß",
	'S': "ŚŠȘ",
	't': "ťț",
	'T': "ŤȚ",
	'u': "ùúûüūůų",
	'U': "ÙÚÛÜŪŮŲ",
	'y': "ýÿ",
	'Y': "ÝŸ",
	'z': "źžż",
	'Z': "ŹŽŻ",
})

func buildFoldTable(groups map[rune]string) map[rune]rune {
	table := make(map[rune]rune, 128)
	for target, sources := range groups {
		for _, src := range sources {
			table[src] = target
		}
	}
	return table
}

// randomSuffix returns a random alphanumeric string. On entropy failure it
// degrades to a deterministic charset walk rather than panicking.
func randomSuffix(length int, lowercase bool) string {
	charset := "abcdefghijklmnopqrstuvwxyz0123456789"
	if !lowercase {
		charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		for i := range b {
			b[i] = charset[i%len(charset)]
		}
		return string(b)
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}
