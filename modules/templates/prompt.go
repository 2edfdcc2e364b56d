package templates

import (
	"strings"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/llm"
)

// systemPrompt is the fixed instruction sent with every generation call.
// It is never altered at runtime; keeping it byte-identical across calls
// is what makes provider-side prompt caching effective.
const systemPrompt = `You are an expert email developer. You produce responsive email templates in MJML.

Output rules:
- Respond with a single complete MJML document and nothing else: no explanation, no markdown fences, no prose before or after the document.
- The document must start with <mjml> and end with </mjml>.
- All visible content goes inside <mj-body>. Build layout with <mj-section> and <mj-column>; use <mj-wrapper> and <mj-group> only where the layout requires them.
- Use only standard MJML components: mj-section, mj-column, mj-text, mj-image, mj-button, mj-divider, mj-spacer, mj-social, mj-social-element, mj-table, mj-hero, mj-navbar, mj-navbar-link, mj-wrapper, mj-group, mj-accordion, mj-carousel, mj-raw.
- Use only attributes each component actually supports. Never invent attributes.
- Shared styles belong in <mj-head> inside <mj-attributes> or <mj-style>; everything else is styled through component attributes.
- Every <mj-button> and every link needs a concrete href.
- Prefer web-safe font stacks and include fallbacks.
- The document must be complete and well formed; never stop in the middle of a tag.

Design rules:
- Follow the user's brief closely. When a reference image is attached, match its layout, colors and typography as faithfully as MJML allows.
- Keep copy concise and scannable; emails are skimmed, not read.
- Default to a single-column mobile-friendly layout unless the brief asks otherwise.`

// Markers framing extracted file content injected into a prompt. Their
// presence in a historical turn tells the builder the file is already in
// the transcript and must not be resent.
const (
	fileContentMarker    = "--- ATTACHED FILE CONTENT ---"
	fileContentSeparator = "--- END OF ATTACHED FILE ---"
)

// BuildMessages deterministically assembles the system instruction and the
// attempt-1 message sequence for a request. Pure function of its input.
//
// Cache hints go on the text part of a historical turn when it embeds
// previously-injected file content, and on the final historical turn, which
// marks the stable prefix boundary for provider-side caching. Hints are
// performance only; dropping them changes nothing semantically.
func BuildMessages(req GenerationRequest) (string, []llm.Message) {
	messages := make([]llm.Message, 0, len(req.History)+1)
	for i, turn := range req.History {
		cache := strings.Contains(turn.Content, fileContentMarker) || i == len(req.History)-1
		messages = append(messages, turnMessage(turn, cache))
	}

	prompt := injectFileContent(req.Prompt, req.ExtractedFileText, req.History)
	current := Turn{Role: llm.RoleUser, Content: prompt, Images: req.Images}
	messages = append(messages, turnMessage(current, false))

	return systemPrompt, messages
}

// injectFileContent prepends the framed file text to the prompt unless a
// historical turn already carries it. The transcript stores the prompt in
// this exact form so later calls see the marker and skip resending.
func injectFileContent(prompt, fileText string, history []Turn) string {
	if fileText == "" {
		return prompt
	}
	for _, turn := range history {
		if strings.Contains(turn.Content, fileContentMarker) {
			return prompt
		}
	}
	return fileContentBlock(fileText) + prompt
}

// turnMessage converts one transcript turn into a wire message: image parts
// first, then the text part.
func turnMessage(turn Turn, cache bool) llm.Message {
	parts := make([]llm.Part, 0, len(turn.Images)+1)
	for _, img := range turn.Images {
		parts = append(parts, llm.ImagePart(llm.Image{
			Data:      img.Data,
			MediaType: img.MediaType,
			FileName:  img.FileName,
		}))
	}
	if cache {
		parts = append(parts, llm.CachedText(turn.Content))
	} else {
		parts = append(parts, llm.Text(turn.Content))
	}
	return llm.Message{Role: turn.Role, Parts: parts}
}

func fileContentBlock(text string) string {
	return fileContentMarker + "\n" + text + "\n" + fileContentSeparator + "\n\n"
}
