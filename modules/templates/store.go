package templates

import (
	"context"
	"time"
)

// Template is a saved MJML document owned by a user. Document always holds
// the MJML source; HTML is rendered on demand and never persisted.
type Template struct {
	ID             string    `bson:"_id" json:"id"`
	UserID         string    `bson:"user_id" json:"userId"`
	Name           string    `bson:"name" json:"name"`
	Document       string    `bson:"document" json:"document"`
	ConversationID string    `bson:"conversation_id,omitempty" json:"conversationId,omitempty"`
	AttemptsUsed   int       `bson:"attempts_used,omitempty" json:"attemptsUsed,omitempty"`
	HadErrors      bool      `bson:"had_errors,omitempty" json:"hadErrors,omitempty"`
	PreviewSlug    string    `bson:"preview_slug,omitempty" json:"previewSlug,omitempty"`
	PreviewURL     string    `bson:"preview_url,omitempty" json:"previewUrl,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

// Conversation is the persisted transcript of one generation session.
// Turns are append-only; refinements replay them as model context.
type Conversation struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	Turns     []Turn    `bson:"turns" json:"turns"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// TemplateStore persists saved templates. Every method scoped by userID so
// one user can never read or mutate another user's documents.
type TemplateStore interface {
	Create(ctx context.Context, tpl *Template) error
	Get(ctx context.Context, userID, id string) (*Template, error)
	List(ctx context.Context, userID string, limit, offset int) ([]Template, error)
	Update(ctx context.Context, tpl *Template) error
	Delete(ctx context.Context, userID, id string) error
}

// ConversationStore persists generation transcripts. Put upserts the whole
// conversation; transcripts are small (a handful of turns) so replacing the
// document beats fiddling with positional updates.
type ConversationStore interface {
	Get(ctx context.Context, userID, id string) (*Conversation, error)
	Put(ctx context.Context, conv *Conversation) error
	Delete(ctx context.Context, userID, id string) error
}
