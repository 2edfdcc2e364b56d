// Package render compiles MJML documents into email-ready HTML.
//
// The Renderer interface hides the compiler behind a small surface so that
// callers can swap in fakes. Structural problems are reported as
// *InvalidError with one Issue per finding, which callers format for
// user-facing diagnostics.
package render

import (
	"context"
	"fmt"
	"strings"
)

// Level selects how tolerant the compiler is of structural problems.
type Level string

const (
	// Strict fails compilation on any structural error, including illegal
	// attributes and misplaced elements.
	Strict Level = "strict"
	// Soft downgrades validation errors to warnings and renders anyway.
	Soft Level = "soft"
)

// Issue is a single structural problem reported by the compiler.
type Issue struct {
	Line    int
	Message string
	TagName string
}

func (i Issue) String() string {
	if i.TagName == "" {
		return fmt.Sprintf("line %d: %s", i.Line, i.Message)
	}
	return fmt.Sprintf("line %d: %s (%s)", i.Line, i.Message, i.TagName)
}

// InvalidError reports that a document failed structural validation.
// Issues may be empty when the compiler rejected the input outright
// without per-tag detail.
type InvalidError struct {
	Message string
	Issues  []Issue
}

func (e *InvalidError) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}
	lines := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		lines[i] = issue.String()
	}
	return strings.Join(lines, "\n")
}

// Renderer compiles an MJML document into HTML.
type Renderer interface {
	Render(ctx context.Context, document string, level Level) (string, error)
}
