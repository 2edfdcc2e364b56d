package templates

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	openTag  = "<mjml"
	closeTag = "</mjml>"
)

var (
	// Fence lines the model wraps documents in despite instructions, with
	// or without a language tag.
	codeFenceLine = regexp.MustCompile("(?m)^[ \t]*```[a-zA-Z]*[ \t]*\r?$")

	// Smallest case-insensitive span from an opening root tag to a closing
	// one. MJML cannot nest its root element, so the nearest close is the
	// matching close.
	documentSpan = regexp.MustCompile(`(?is)<mjml[^>]*>.*?</mjml>`)
)

// Extraction strategies in precision order: the first match wins, so the
// stricter patterns must come before the recovery heuristics.
var extractorStrategies = []struct {
	name string
	fn   func(string) (string, bool)
}{
	{name: "regex_span", fn: matchDocumentSpan},
	{name: "index_slice", fn: sliceOpenClose},
	{name: "whole_text", fn: matchWholeText},
	{name: "fragment_recovery", fn: recoverFragment},
}

// ExtractDocument pulls the best-effort MJML document out of raw model
// output. Models routinely decorate their answers with prose and code
// fences, so the text is cleaned first and then run through the strategy
// cascade. The returned strategy name identifies which heuristic matched.
//
// Feeding a previously extracted document back in returns it unchanged.
func ExtractDocument(raw string) (document string, strategy string, err error) {
	cleaned := strings.TrimSpace(codeFenceLine.ReplaceAllString(raw, ""))

	for _, s := range extractorStrategies {
		if doc, ok := s.fn(cleaned); ok {
			return doc, s.name, nil
		}
	}

	lower := strings.ToLower(cleaned)
	return "", "", fmt.Errorf("%w: response length %d, open tag present %t, close tag present %t",
		ErrNoDocument, len(cleaned), strings.Contains(lower, openTag), strings.Contains(lower, closeTag))
}

func matchDocumentSpan(text string) (string, bool) {
	match := documentSpan.FindString(text)
	return match, match != ""
}

// sliceOpenClose recovers a document the span regex missed, taking the
// first open tag and the last close tag so interleaved junk between them
// is preserved for the validator to judge.
func sliceOpenClose(text string) (string, bool) {
	lower := strings.ToLower(text)
	openIdx := strings.Index(lower, openTag)
	closeIdx := strings.LastIndex(lower, closeTag)
	if openIdx < 0 || closeIdx < 0 || closeIdx < openIdx {
		return "", false
	}
	return text[openIdx : closeIdx+len(closeTag)], true
}

func matchWholeText(text string) (string, bool) {
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, openTag) && strings.HasSuffix(lower, closeTag) {
		return text, true
	}
	return "", false
}

// recoverFragment is the last resort: if the text carries MJML component
// fragments or a mangled opening tag, retry the index slice from the first
// fragment onward.
func recoverFragment(text string) (string, bool) {
	idx := strings.Index(strings.ToLower(text), "<mj")
	if idx < 0 {
		return "", false
	}
	return sliceOpenClose(text[idx:])
}
