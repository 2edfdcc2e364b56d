package audiences

import "time"

// List is a locally owned audience: the source of truth subscribers are
// reconciled from. ProviderListID links it to a remote audience; an unlinked
// list is local-only.
type List struct {
	ID             string    `bson:"_id" json:"id"`
	UserID         string    `bson:"user_id" json:"userId"`
	Name           string    `bson:"name" json:"name"`
	ProviderListID string    `bson:"provider_list_id,omitempty" json:"providerListId,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

// Subscriber is one member of a local list. Emails are stored lowercased so
// lookups and the reconcile diff never depend on spelling.
type Subscriber struct {
	ID        string    `bson:"_id" json:"id"`
	ListID    string    `bson:"list_id" json:"listId"`
	UserID    string    `bson:"user_id" json:"userId"`
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Credential is a provider API key for one user, encrypted before it reaches
// the store. It never leaves the service in any response.
type Credential struct {
	UserID    string    `bson:"_id"`
	APIKey    string    `bson:"api_key"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// ImportEntry is one row of a batch import.
type ImportEntry struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// ImportReport summarizes one batch import. Skipped entries carry the reason
// so the caller can fix and resubmit them.
type ImportReport struct {
	Added   int            `json:"added"`
	Updated int            `json:"updated"`
	Skipped []SkippedEntry `json:"skipped,omitempty"`
}

// SkippedEntry is an import row that was not applied.
type SkippedEntry struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// ReconcileReport is the plan that would bring the remote audience in line
// with the local list: members to add, members whose name changed, and
// remote members no longer present locally.
type ReconcileReport struct {
	ListID         string    `json:"listId"`
	ProviderListID string    `json:"providerListId"`
	Add            []Member  `json:"add"`
	Update         []Member  `json:"update"`
	Remove         []string  `json:"remove"`
	CheckedAt      time.Time `json:"checkedAt"`
}

// InSync reports whether the plan is empty.
func (r *ReconcileReport) InSync() bool {
	return len(r.Add) == 0 && len(r.Update) == 0 && len(r.Remove) == 0
}
