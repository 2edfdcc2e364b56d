package campaigns

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/modules/templates"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/async"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/email"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/queue"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/render"
)

// sendConcurrency caps deliveries in flight for one campaign.
const sendConcurrency = 8

// Sender delivers submitted campaigns on the queue worker.
type Sender struct {
	store     CampaignStore
	templates templates.TemplateStore
	renderer  render.Renderer
	mailer    email.EmailSender
	log       *slog.Logger
}

type SenderOption func(*Sender)

func WithSenderLogger(log *slog.Logger) SenderOption {
	return func(s *Sender) { s.log = log }
}

func NewSender(
	store CampaignStore,
	templateStore templates.TemplateStore,
	renderer render.Renderer,
	mailer email.EmailSender,
	opts ...SenderOption,
) *Sender {
	s := &Sender{
		store:     store,
		templates: templateStore,
		renderer:  renderer,
		mailer:    mailer,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler registers Send under the SendCampaign task name.
func (s *Sender) Handler() queue.Handler {
	return queue.NewTaskHandler(s.Send)
}

// Send processes one SendCampaign task: render once, deliver per recipient,
// record failures, land the campaign in sent or failed.
func (s *Sender) Send(ctx context.Context, task SendCampaign) error {
	c, err := s.store.Get(ctx, task.UserID, task.CampaignID)
	if err != nil {
		return err
	}

	// A redelivered task finds the campaign past queued and stops here;
	// resending a partially delivered campaign would double-send.
	if err := transition(ctx, c, eventStart); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, c); err != nil {
		return err
	}

	tpl, err := s.templates.Get(ctx, task.UserID, c.TemplateID)
	if err != nil {
		return s.fail(ctx, c, fmt.Errorf("load template: %w", err))
	}
	html, err := s.renderer.Render(ctx, tpl.Document, render.Soft)
	if err != nil {
		return s.fail(ctx, c, fmt.Errorf("render template: %w", err))
	}

	sent, failures := s.deliver(ctx, c, html)
	c.SentCount = sent
	c.Failures = failures

	// One delivered recipient makes the campaign sent; failures stay on the
	// record. Nothing delivered means failed.
	event := eventComplete
	if sent == 0 {
		event = eventFail
	}
	if err := transition(ctx, c, event); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, c); err != nil {
		return err
	}

	s.log.Info("campaign send finished",
		slog.String("campaign_id", c.ID),
		slog.String("status", string(c.Status)),
		slog.Int("sent", sent),
		slog.Int("failed", len(failures)))
	return nil
}

// deliver fans recipient sends out in bounded waves, collecting failures in
// recipient order.
func (s *Sender) deliver(ctx context.Context, c *Campaign, html string) (int, []SendFailure) {
	var failures []SendFailure
	sent := 0
	for batch := range slices.Chunk(c.Recipients, sendConcurrency) {
		futures := make([]*async.Future[struct{}], len(batch))
		for i, rcpt := range batch {
			futures[i] = async.Async(ctx, rcpt, func(ctx context.Context, to string) (struct{}, error) {
				return struct{}{}, s.mailer.SendEmail(ctx, email.SendEmailParams{
					SendTo:   to,
					Subject:  c.Subject,
					BodyHTML: html,
					Tag:      campaignTag,
				})
			})
		}
		for i, fut := range futures {
			if _, err := fut.Await(); err != nil {
				failures = append(failures, SendFailure{Recipient: batch[i], Reason: err.Error()})
				continue
			}
			sent++
		}
	}
	return sent, failures
}

// fail marks the campaign failed and consumes the task; retrying a campaign
// whose template is gone or broken cannot succeed.
func (s *Sender) fail(ctx context.Context, c *Campaign, cause error) error {
	s.log.Error("campaign send failed",
		slog.String("campaign_id", c.ID),
		slog.String("error", cause.Error()))

	c.Failures = append(c.Failures, SendFailure{Reason: cause.Error()})
	if err := transition(ctx, c, eventFail); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	return s.store.Update(ctx, c)
}
