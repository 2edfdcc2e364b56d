package templates

import "github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/llm"

// ImageAttachment is a user-supplied reference image, carried as base64
// so it can travel through JSON and be persisted alongside the turn that
// introduced it.
type ImageAttachment struct {
	Data      string `json:"data" bson:"data"`
	MediaType string `json:"mediaType" bson:"media_type"`
	FileName  string `json:"fileName" bson:"file_name"`
}

// Turn is one exchange in a conversation transcript. Transcripts are
// append-only: turns are never mutated in place.
type Turn struct {
	Role    llm.Role          `json:"role" bson:"role"`
	Content string            `json:"content" bson:"content"`
	Images  []ImageAttachment `json:"images,omitempty" bson:"images,omitempty"`
}

// GenerationRequest is one template-generation call. Immutable for the
// duration of the call.
type GenerationRequest struct {
	Prompt            string
	ConversationID    string
	History           []Turn
	UserID            string
	Images            []ImageAttachment
	ExtractedFileText string
}

// RefineRequest rewrites an existing document according to user feedback.
type RefineRequest struct {
	Document          string
	Feedback          string
	ConversationID    string
	History           []Turn
	UserID            string
	Images            []ImageAttachment
	ExtractedFileText string
}

// FailureKind distinguishes why an attempt was rejected.
type FailureKind string

const (
	// FailureExtraction means no document could be pulled out of the raw
	// model output at all.
	FailureExtraction FailureKind = "extraction"
	// FailureValidation means a document was extracted but failed
	// structural validation.
	FailureValidation FailureKind = "validation"
)

// AttemptFailure records one rejected attempt.
type AttemptFailure struct {
	Attempt int         `json:"attempt"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// GenerationOutcome is the terminal value of a generation run. When every
// attempt failed it wraps the synthesized fallback document rather than an
// error: callers can always render Document.
type GenerationOutcome struct {
	Document         string           `json:"document"`
	AssistantMessage string           `json:"assistantMessage"`
	ConversationID   string           `json:"conversationId"`
	AttemptsUsed     int              `json:"attemptsUsed"`
	HadErrors        bool             `json:"hadErrors"`
	Failures         []AttemptFailure `json:"failures,omitempty"`
}

// ValidationResult is the validator's verdict on one candidate document.
type ValidationResult struct {
	Valid bool
	HTML  string
	Error string
}
