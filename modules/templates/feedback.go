package templates

import (
	"fmt"
	"strings"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/sanitizer"
)

const (
	// candidatePreviewLimit bounds how much of a rejected document is
	// echoed back to the model, keeping prompt growth linear across
	// retries instead of compounding.
	candidatePreviewLimit = 800
	truncationMarker      = "\n... [document truncated]"
)

// CorrectiveFeedback builds the synthetic user turn appended after a
// rejected attempt. Pure function of the error text, the rejected
// candidate (empty when extraction found nothing) and the attempt number.
func CorrectiveFeedback(validationError, previousCandidate string, attempt int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Attempt %d was rejected. Fix every issue below and return the corrected document.\n\n", attempt)
	b.WriteString("Validation errors:\n")
	b.WriteString(validationError)
	b.WriteString("\n")

	lower := strings.ToLower(validationError)
	if strings.Contains(lower, "illegal") {
		b.WriteString("\nRemove every attribute the component does not support. Use only documented MJML attributes; move custom styling into <mj-attributes> or <mj-style> in <mj-head>.\n")
	}
	if strings.Contains(lower, "truncat") || strings.Contains(lower, "incomplete") || strings.Contains(lower, "max_tokens") {
		b.WriteString("\nThe document appears to be cut off. Produce a shorter, simpler template that fits completely in a single response.\n")
	}

	if previousCandidate != "" {
		if len([]rune(previousCandidate)) > candidatePreviewLimit {
			fmt.Fprintf(&b, "\nYour previous document (first %d characters):\n", candidatePreviewLimit)
			b.WriteString(sanitizer.LimitLength(previousCandidate, candidatePreviewLimit))
			b.WriteString(truncationMarker)
		} else {
			b.WriteString("\nYour previous document:\n")
			b.WriteString(previousCandidate)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nRespond with a complete MJML document only. It must start with <mjml> and end with </mjml>, contain an <mj-body> section, and include no prose, comments or markdown fences.")
	return b.String()
}
