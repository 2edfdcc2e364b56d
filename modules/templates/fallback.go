package templates

import (
	"fmt"
	"strings"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/sanitizer"
)

const (
	fallbackPromptLimit = 200
	fallbackErrorLimit  = 400
)

// fallbackTemplate is hand-authored and structurally valid by
// construction; it is never run through the validator at runtime. A static
// test renders it to keep that guarantee honest. Placeholders: attempts
// used, escaped prompt, escaped error.
const fallbackTemplate = `<mjml>
  <mj-body background-color="#f4f4f5">
    <mj-section background-color="#ffffff" border-radius="8px" padding="32px 24px">
      <mj-column>
        <mj-text font-size="20px" font-weight="700" color="#18181b" align="center">We could not generate your template</mj-text>
        <mj-text font-size="14px" color="#3f3f46" line-height="22px">All %d generation attempts failed, so this placeholder was created instead of the design you asked for.</mj-text>
        <mj-divider border-color="#e4e4e7" border-width="1px"></mj-divider>
        <mj-text font-size="13px" color="#52525b" line-height="20px"><strong>Your request:</strong> %s</mj-text>
        <mj-text font-size="13px" color="#52525b" line-height="20px"><strong>Last error:</strong> %s</mj-text>
        <mj-divider border-color="#e4e4e7" border-width="1px"></mj-divider>
        <mj-text font-size="14px" color="#3f3f46" line-height="22px">Try again with a simpler request: fewer sections, plainer styling, or a shorter description. Splitting a complex design into smaller steps usually helps.</mj-text>
      </mj-column>
    </mj-section>
  </mj-body>
</mjml>`

// FallbackDocument deterministically builds the user-facing document
// returned when every generation attempt failed. The prompt and error are
// truncated and HTML-escaped before embedding so hostile or markup-heavy
// input cannot invalidate the document itself.
func FallbackDocument(prompt, lastError string, attemptsUsed int) string {
	echo := sanitizer.EscapeHTML(sanitizer.LimitLength(strings.TrimSpace(prompt), fallbackPromptLimit))
	detail := sanitizer.EscapeHTML(sanitizer.LimitLength(strings.TrimSpace(lastError), fallbackErrorLimit))
	if detail == "" {
		detail = "the model never produced a structurally valid document"
	}
	return fmt.Sprintf(fallbackTemplate, attemptsUsed, echo, detail)
}
