package campaigns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/modules/templates"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/email"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/queue"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/randomname"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/render"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/sanitizer"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	// Tag values let the provider's activity stream tell real sends and
	// test sends apart.
	campaignTag = "campaign"
	testSendTag = "campaign-test"
)

// Enqueuer is the slice of queue.Enqueuer the submit path needs.
// *queue.Enqueuer satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) error
}

// Service owns campaign CRUD and the submit path. Actual delivery happens in
// Sender on the queue worker; TestSend is the one send that runs inline.
type Service struct {
	store     CampaignStore
	templates templates.TemplateStore
	renderer  render.Renderer
	mailer    email.EmailSender
	enqueuer  Enqueuer
	log       *slog.Logger
}

type ServiceOption func(*Service)

func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

func NewService(
	store CampaignStore,
	templateStore templates.TemplateStore,
	renderer render.Renderer,
	mailer email.EmailSender,
	enqueuer Enqueuer,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		store:     store,
		templates: templateStore,
		renderer:  renderer,
		mailer:    mailer,
		enqueuer:  enqueuer,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCampaignParams carries a new draft campaign. Recipients are cleaned
// and deduplicated; Subject and an existing TemplateID are required.
type CreateCampaignParams struct {
	UserID     string
	TemplateID string
	Name       string
	Subject    string
	Recipients []string
}

// Create stores a draft. An unnamed campaign gets a generated name so lists
// stay readable, matching saved templates.
func (s *Service) Create(ctx context.Context, params CreateCampaignParams) (*Campaign, error) {
	subject := strings.TrimSpace(params.Subject)
	if subject == "" {
		return nil, ErrEmptySubject
	}
	if _, err := s.templates.Get(ctx, params.UserID, params.TemplateID); err != nil {
		return nil, templateError(params.TemplateID, err)
	}
	recipients, err := cleanRecipients(params.Recipients)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = randomname.GenerateSimple(nil)
	}

	now := time.Now()
	c := &Campaign{
		ID:         uuid.NewString(),
		UserID:     params.UserID,
		TemplateID: params.TemplateID,
		Name:       name,
		Subject:    subject,
		Recipients: recipients,
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Campaign, error) {
	return s.store.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Campaign, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, userID, limit, offset)
}

// Submit moves a draft to queued and enqueues its send task. The template
// must still exist and the recipient list must be non-empty; delivery itself
// happens when the worker picks the task up.
func (s *Service) Submit(ctx context.Context, userID, id string) (*Campaign, error) {
	c, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.templates.Get(ctx, userID, c.TemplateID); err != nil {
		return nil, templateError(c.TemplateID, err)
	}
	if len(c.Recipients) == 0 {
		return nil, ErrNoRecipients
	}

	if err := transition(ctx, c, eventSubmit); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}

	if err := s.enqueuer.Enqueue(ctx, SendCampaign{CampaignID: c.ID, UserID: c.UserID}); err != nil {
		// Put the draft back so the user can resubmit once the queue
		// recovers.
		c.Status = StatusDraft
		c.UpdatedAt = time.Now()
		if uerr := s.store.Update(ctx, c); uerr != nil {
			s.log.Error("revert campaign after enqueue failure",
				slog.String("campaign_id", c.ID),
				slog.String("error", uerr.Error()))
		}
		return nil, fmt.Errorf("enqueue campaign send: %w", err)
	}
	return c, nil
}

// TestSendParams aims one rendered campaign at a single inbox.
type TestSendParams struct {
	UserID     string
	CampaignID string
	Recipient  string
}

// TestSend renders the campaign's template and delivers it to one address
// immediately, skipping the queue and the lifecycle. It works on a campaign
// in any status and never touches the stored record.
func (s *Service) TestSend(ctx context.Context, params TestSendParams) error {
	c, err := s.store.Get(ctx, params.UserID, params.CampaignID)
	if err != nil {
		return err
	}
	addr := sanitizer.SanitizeEmail(params.Recipient)
	if !email.ValidAddress(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidRecipient, params.Recipient)
	}
	tpl, err := s.templates.Get(ctx, params.UserID, c.TemplateID)
	if err != nil {
		return templateError(c.TemplateID, err)
	}
	html, err := s.renderer.Render(ctx, tpl.Document, render.Soft)
	if err != nil {
		return fmt.Errorf("render template %s: %w", tpl.ID, err)
	}
	return s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   addr,
		Subject:  c.Subject,
		BodyHTML: html,
		Tag:      testSendTag,
	})
}

// templateError keeps template lookups on campaign error vocabulary; callers
// match ErrTemplateMissing, not the templates module's errors.
func templateError(id string, err error) error {
	if errors.Is(err, templates.ErrTemplateNotFound) {
		return fmt.Errorf("%w: %s", ErrTemplateMissing, id)
	}
	return err
}

// cleanRecipients trims, sanitizes and deduplicates the list, rejecting the
// first entry that does not look like an email address. Deduplication is
// case-insensitive; the first spelling wins.
func cleanRecipients(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		addr := sanitizer.SanitizeEmail(r)
		if addr == "" {
			continue
		}
		if !email.ValidAddress(addr) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRecipient, addr)
		}
		key := strings.ToLower(addr)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out, nil
}
