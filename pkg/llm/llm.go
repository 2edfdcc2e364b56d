package llm

import "context"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Image is a base64-encoded image attachment.
type Image struct {
	Data      string // base64 payload, no data: URI prefix
	MediaType string // e.g. image/png
	FileName  string
}

// Part is one typed chunk of a message: either text or an image. Cache
// marks a text part as a provider-side cache boundary; it is a performance
// hint with no effect on correctness.
type Part struct {
	Text  string
	Image *Image
	Cache bool
}

// Text returns a plain text part.
func Text(s string) Part {
	return Part{Text: s}
}

// CachedText returns a text part carrying a cache hint.
func CachedText(s string) Part {
	return Part{Text: s, Cache: true}
}

// ImagePart returns an image part.
func ImagePart(img Image) Part {
	return Part{Image: &img}
}

// Message is one turn in the conversation sent to the model.
type Message struct {
	Role  Role
	Parts []Part
}

// UserMessage builds a user-role message from parts.
func UserMessage(parts ...Part) Message {
	return Message{Role: RoleUser, Parts: parts}
}

// AssistantMessage builds a plain-text assistant-role message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Parts: []Part{Text(text)}}
}

// Request is one model invocation. Model and MaxTokens override the
// client's configured defaults when set.
type Request struct {
	System      string
	CacheSystem bool
	Messages    []Message
	Model       string
	MaxTokens   int64
}

// StopReason is why the model stopped generating.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopMaxTokens StopReason = "max_tokens"
	StopSequence  StopReason = "stop_sequence"
)

// Truncated reports whether the model hit its output token cap.
func (s StopReason) Truncated() bool {
	return s == StopMaxTokens
}

// Usage is the token accounting for one call.
type Usage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

// Response is the model's reply to one request.
type Response struct {
	ID         string
	Text       string // first text content part
	StopReason StopReason
	Usage      Usage
}

// Client is the provider contract the generation engine consumes.
type Client interface {
	CreateMessage(ctx context.Context, req Request) (*Response, error)
}
