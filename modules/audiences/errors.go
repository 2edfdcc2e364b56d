package audiences

import "errors"

var (
	// ErrListNotFound is returned when a list id has no record.
	ErrListNotFound = errors.New("audience list not found")

	// ErrSubscriberNotFound is returned when a subscriber id has no record
	// on the given list.
	ErrSubscriberNotFound = errors.New("subscriber not found")

	// ErrEmptyName is returned when a list is created without a name.
	ErrEmptyName = errors.New("list name cannot be empty")

	// ErrInvalidEmail is returned when a subscriber email fails format
	// validation. The wrapped message names the offending address.
	ErrInvalidEmail = errors.New("invalid subscriber email")

	// ErrDuplicateSubscriber is returned when the email is already on the
	// list.
	ErrDuplicateSubscriber = errors.New("subscriber already on the list")

	// ErrProviderNotConfigured is returned from reconcile operations when
	// no remote provider is wired into the service.
	ErrProviderNotConfigured = errors.New("audience provider is not configured")

	// ErrNoCredentials is returned when a reconcile operation runs for a
	// user who has not stored a provider API key.
	ErrNoCredentials = errors.New("no provider API key stored")

	// ErrEmptyAPIKey is returned when a blank API key is submitted.
	ErrEmptyAPIKey = errors.New("provider API key cannot be empty")

	// ErrListNotLinked is returned when a reconcile operation runs against
	// a list with no remote audience id.
	ErrListNotLinked = errors.New("list is not linked to a remote audience")
)
