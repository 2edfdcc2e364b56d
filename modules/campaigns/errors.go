package campaigns

import "errors"

var (
	// ErrCampaignNotFound is returned when a campaign id has no record.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrInvalidTransition is returned when an operation does not apply to
	// the campaign's current status, e.g. submitting a campaign twice.
	ErrInvalidTransition = errors.New("invalid campaign transition")

	// ErrTemplateMissing is returned when a campaign references a template
	// that does not exist or was deleted after the campaign was created.
	ErrTemplateMissing = errors.New("campaign template does not exist")

	// ErrNoRecipients is returned when a campaign with an empty recipient
	// list is submitted.
	ErrNoRecipients = errors.New("campaign has no recipients")

	// ErrInvalidRecipient is returned when a recipient list entry is not a
	// valid email address. The wrapped message names the offending entry.
	ErrInvalidRecipient = errors.New("invalid recipient address")

	// ErrEmptySubject is returned when a campaign is created without a
	// subject line.
	ErrEmptySubject = errors.New("campaign subject cannot be empty")
)
