package templates

import "errors"

var (
	// ErrEmptyPrompt is returned when a generation request has no prompt text.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrEmptyFeedback is returned when a refine request has no feedback text.
	ErrEmptyFeedback = errors.New("feedback cannot be empty")

	// ErrTooManyImages is returned when a request exceeds the attachment limit.
	ErrTooManyImages = errors.New("too many image attachments")

	// ErrNoDocument is the extraction failure: no strategy could locate an
	// MJML document in the model output.
	ErrNoDocument = errors.New("no valid document found in model output")

	// ErrGenerationTimeout is fatal for the whole request; it is never
	// retried through the validation loop.
	ErrGenerationTimeout = errors.New("generation request timed out")

	// ErrServiceBusy is returned once the overload backoff gives up.
	ErrServiceBusy = errors.New("model service is overloaded, retry later")

	// ErrTruncatedOutput means the model hit its output token cap mid
	// document. The request must be simplified, not retried as-is.
	ErrTruncatedOutput = errors.New("model output was truncated, simplify your request")

	// ErrTemplateNotFound is returned when a template id has no record.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrConversationNotFound is returned when a conversation id has no record.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrSearchUnavailable is returned when search is requested but no
	// index is configured.
	ErrSearchUnavailable = errors.New("template search is not configured")

	// ErrInvalidDocument is returned when a document fails validation on
	// save or update. The wrapped message carries the validator output.
	ErrInvalidDocument = errors.New("document failed validation")

	// ErrHostingNotConfigured is returned when publishing is requested but
	// no blob storage is wired.
	ErrHostingNotConfigured = errors.New("preview hosting is not configured")

	// ErrPreviewNotPublished is returned when a QR code is requested for a
	// template that has never been published.
	ErrPreviewNotPublished = errors.New("template preview has not been published")
)
