package render

import (
	"context"
	"errors"
	"fmt"

	mjml "github.com/Boostport/mjml-go"
)

// MJML renders documents with the embedded MJML compiler. Safe for
// concurrent use.
type MJML struct {
	minify bool
}

type MJMLOption func(*MJML)

// WithMinify strips whitespace from the rendered HTML. Useful for
// outbound email payloads; leave it off for previews where readable
// markup helps debugging.
func WithMinify() MJMLOption {
	return func(r *MJML) { r.minify = true }
}

func NewMJML(opts ...MJMLOption) *MJML {
	r := &MJML{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MJML) Render(ctx context.Context, document string, level Level) (string, error) {
	opts := []mjml.ToHTMLOption{mjml.WithValidationLevel(validationLevel(level))}
	if r.minify {
		opts = append(opts, mjml.WithMinify(true))
	}

	html, err := mjml.ToHTML(ctx, document, opts...)
	if err != nil {
		var mjmlErr mjml.Error
		if errors.As(err, &mjmlErr) {
			return "", &InvalidError{Message: mjmlErr.Message, Issues: toIssues(mjmlErr.Details)}
		}
		return "", fmt.Errorf("render mjml: %w", err)
	}

	return html, nil
}

func validationLevel(level Level) mjml.ValidationLevel {
	if level == Soft {
		return mjml.Soft
	}
	return mjml.Strict
}

// mjmlValidationError aliases the anonymous struct mjml-go uses for the
// elements of Error.Details; the library exports no named type for it.
type mjmlValidationError = struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
	TagName string `json:"tagName"`
}

func toIssues(details []mjmlValidationError) []Issue {
	if len(details) == 0 {
		return nil
	}
	issues := make([]Issue, len(details))
	for i, d := range details {
		issues[i] = Issue{Line: int(d.Line), Message: d.Message, TagName: d.TagName}
	}
	return issues
}
