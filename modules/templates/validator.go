package templates

import (
	"context"
	"fmt"
	"strings"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/render"
)

// Validator decides whether a candidate document is structurally
// acceptable and, if so, produces its rendered HTML.
type Validator struct {
	renderer render.Renderer
}

func NewValidator(renderer render.Renderer) *Validator {
	return &Validator{renderer: renderer}
}

// Validate checks the candidate in order: root tags, body section, then a
// full strict compile. It never panics outward; a panicking renderer is
// reported as an ordinary invalid result.
func (v *Validator) Validate(ctx context.Context, document string) (result ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = ValidationResult{Error: fmt.Sprintf("renderer panic: %v", r)}
		}
	}()

	lower := strings.ToLower(document)
	if !strings.Contains(lower, openTag) || !strings.Contains(lower, closeTag) {
		return ValidationResult{Error: "document must start with <mjml> and end with </mjml>"}
	}
	if !strings.Contains(lower, "<mj-body") || !strings.Contains(lower, "</mj-body>") {
		return ValidationResult{Error: "document must contain an <mj-body> section with a closing tag"}
	}

	html, err := v.renderer.Render(ctx, document, render.Strict)
	if err != nil {
		return ValidationResult{Error: err.Error()}
	}
	return ValidationResult{Valid: true, HTML: html}
}
