// Package slug converts arbitrary strings into URL-safe identifiers.
//
// Runs of punctuation and whitespace collapse into a single separator,
// common Latin diacritics fold to ASCII, and an optional random suffix
// keeps slugs made from identical names distinct:
//
//	slug.Make("Black Friday Sale!")
//	// "black-friday-sale"
//
//	slug.Make("Black Friday Sale!", slug.MaxLength(24), slug.WithSuffix(6))
//	// "black-friday-sale-x7g3k2"
//
// All functions are safe for concurrent use.
package slug
