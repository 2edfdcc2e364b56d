package audiences

import "context"

// Member is one entry in a remote audience.
type Member struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// AudienceProvider is the remote audience service, Mailchimp in production.
// Implementations translate these three calls onto the provider's API; this
// module never speaks the provider protocol itself. The api key is passed
// per call because keys are stored per user, not per process.
type AudienceProvider interface {
	// Members returns the full remote membership of listID.
	Members(ctx context.Context, apiKey, listID string) ([]Member, error)

	// Upsert adds new members and updates existing ones, matched by email.
	Upsert(ctx context.Context, apiKey, listID string, members []Member) error

	// Remove unsubscribes the given emails.
	Remove(ctx context.Context, apiKey, listID string, emails []string) error
}
