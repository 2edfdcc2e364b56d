package templates

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/blobstore"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/cache"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/linkcheck"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/llm"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/qrcode"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/randomname"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/render"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/slug"
)

const (
	defaultPreviewCacheSize = 128
	defaultListLimit        = 20
	maxListLimit            = 100
	previewSlugSuffixLength = 6
	liveProbeTimeout        = 5 * time.Second
)

// Service wraps the generation loop with durable state: conversations,
// saved templates, rendered previews and the optional search index.
type Service struct {
	generator     *Generator
	validator     *Validator
	renderer      render.Renderer
	templates     TemplateStore
	conversations ConversationStore

	blobs   blobstore.Storage
	indexer Indexer

	checker     *linkcheck.Checker
	liveChecker *linkcheck.Checker
	previews    *cache.LRU[string, string]
	presets     []Preset
	log         *slog.Logger
}

type ServiceOption func(*Service)

// WithBlobStorage enables hosted previews. Without it PublishPreview and
// PreviewQR report that hosting is not configured.
func WithBlobStorage(storage blobstore.Storage) ServiceOption {
	return func(s *Service) { s.blobs = storage }
}

// WithIndexer enables search. Without it SearchTemplates returns
// ErrSearchUnavailable and saves skip indexing.
func WithIndexer(indexer Indexer) ServiceOption {
	return func(s *Service) { s.indexer = indexer }
}

func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

func WithPreviewCacheSize(n int) ServiceOption {
	return func(s *Service) { s.previews = cache.NewLRU[string, string](n) }
}

func NewService(
	generator *Generator,
	renderer render.Renderer,
	templates TemplateStore,
	conversations ConversationStore,
	opts ...ServiceOption,
) (*Service, error) {
	presets, err := LoadPresets()
	if err != nil {
		return nil, err
	}

	s := &Service{
		generator:     generator,
		validator:     NewValidator(renderer),
		renderer:      renderer,
		templates:     templates,
		conversations: conversations,
		checker:       linkcheck.New(),
		liveChecker:   linkcheck.New(linkcheck.WithLiveProbe(liveProbeTimeout)),
		previews:      cache.NewLRU[string, string](defaultPreviewCacheSize),
		presets:       presets,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Generate runs the generation loop inside a new or continued conversation
// and persists both sides of the exchange. History is always loaded from the
// conversation store; any caller-supplied turns are replaced.
func (s *Service) Generate(ctx context.Context, req GenerationRequest) (*GenerationOutcome, error) {
	conv, err := s.loadOrCreateConversation(ctx, req.UserID, req.ConversationID)
	if err != nil {
		return nil, err
	}
	req.ConversationID = conv.ID
	req.History = conv.Turns

	outcome, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	// The transcript stores the prompt exactly as sent, file block included,
	// so replayed history keeps the marker the builder scans for.
	sentPrompt := injectFileContent(req.Prompt, req.ExtractedFileText, conv.Turns)
	now := time.Now()
	conv.Turns = append(conv.Turns,
		Turn{Role: llm.RoleUser, Content: sentPrompt, Images: req.Images},
		Turn{Role: llm.RoleAssistant, Content: outcome.Document},
	)
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	conv.UpdatedAt = now

	// The caller already paid for the generation; a transcript write failure
	// costs future refinement context, not the outcome.
	if err := s.conversations.Put(ctx, conv); err != nil {
		s.log.Warn("persist conversation failed",
			slog.String("conversation_id", conv.ID),
			slog.String("error", err.Error()))
	}

	return outcome, nil
}

// Refine reruns the loop over an existing document plus user feedback,
// continuing the document's conversation when one is given.
func (s *Service) Refine(ctx context.Context, req RefineRequest) (*GenerationOutcome, error) {
	if strings.TrimSpace(req.Feedback) == "" {
		return nil, ErrEmptyFeedback
	}
	return s.Generate(ctx, GenerationRequest{
		Prompt:            refinePrompt(req.Document, req.Feedback),
		ConversationID:    req.ConversationID,
		UserID:            req.UserID,
		Images:            req.Images,
		ExtractedFileText: req.ExtractedFileText,
	})
}

func (s *Service) loadOrCreateConversation(ctx context.Context, userID, id string) (*Conversation, error) {
	if id == "" {
		now := time.Now()
		return &Conversation{
			ID:        uuid.NewString(),
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	return s.conversations.Get(ctx, userID, id)
}

// SaveTemplateParams carries everything needed to persist a generated
// document. ConversationID and the attempt counters are optional metadata
// copied from the outcome that produced the document.
type SaveTemplateParams struct {
	UserID         string
	Name           string
	Document       string
	ConversationID string
	AttemptsUsed   int
	HadErrors      bool
}

// SaveTemplate validates and stores a document. An unnamed template gets a
// generated name so lists stay readable.
func (s *Service) SaveTemplate(ctx context.Context, params SaveTemplateParams) (*Template, error) {
	result := s.validator.Validate(ctx, params.Document)
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, result.Error)
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		name = randomname.GenerateSimple(nil)
	}

	now := time.Now()
	tpl := &Template{
		ID:             uuid.NewString(),
		UserID:         params.UserID,
		Name:           name,
		Document:       params.Document,
		ConversationID: params.ConversationID,
		AttemptsUsed:   params.AttemptsUsed,
		HadErrors:      params.HadErrors,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.templates.Create(ctx, tpl); err != nil {
		return nil, err
	}

	s.indexTemplate(ctx, tpl)
	return tpl, nil
}

// UpdateTemplateParams holds the mutable fields of a saved template. Empty
// fields keep their current value.
type UpdateTemplateParams struct {
	UserID   string
	ID       string
	Name     string
	Document string
}

func (s *Service) UpdateTemplate(ctx context.Context, params UpdateTemplateParams) (*Template, error) {
	tpl, err := s.templates.Get(ctx, params.UserID, params.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(params.Name); name != "" {
		tpl.Name = name
	}
	if params.Document != "" {
		result := s.validator.Validate(ctx, params.Document)
		if !result.Valid {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, result.Error)
		}
		tpl.Document = params.Document
	}
	tpl.UpdatedAt = time.Now()

	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, err
	}

	s.previews.Remove(params.ID)
	s.indexTemplate(ctx, tpl)
	return tpl, nil
}

func (s *Service) GetTemplate(ctx context.Context, userID, id string) (*Template, error) {
	return s.templates.Get(ctx, userID, id)
}

func (s *Service) ListTemplates(ctx context.Context, userID string, limit, offset int) ([]Template, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.templates.List(ctx, userID, limit, offset)
}

func (s *Service) DeleteTemplate(ctx context.Context, userID, id string) error {
	tpl, err := s.templates.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.templates.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.previews.Remove(id)
	if s.blobs != nil && tpl.PreviewSlug != "" {
		if err := s.blobs.DeletePrefix(ctx, previewKeyPrefix(tpl.PreviewSlug)); err != nil {
			s.log.Warn("delete hosted preview failed",
				slog.String("template_id", id),
				slog.String("error", err.Error()))
		}
	}
	if s.indexer != nil {
		if err := s.indexer.Delete(ctx, id); err != nil {
			s.log.Warn("remove template from search index failed",
				slog.String("template_id", id),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// PreviewTemplate renders a stored document to HTML. Renders are cached per
// template revision; an edit changes UpdatedAt and so the cache key.
func (s *Service) PreviewTemplate(ctx context.Context, userID, id string) (string, error) {
	tpl, err := s.templates.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}

	key := id + ":" + strconv.FormatInt(tpl.UpdatedAt.UnixNano(), 10)
	if html, ok := s.previews.Get(key); ok {
		return html, nil
	}

	html, err := s.renderer.Render(ctx, tpl.Document, render.Strict)
	if err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	s.previews.Put(key, html)
	return html, nil
}

// CheckLinks audits every anchor in the rendered template. With live=true
// each unique http(s) URL is probed with a HEAD request.
func (s *Service) CheckLinks(ctx context.Context, userID, id string, live bool) (*linkcheck.Report, error) {
	html, err := s.PreviewTemplate(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if live {
		return s.liveChecker.Check(ctx, html)
	}
	return s.checker.Check(ctx, html)
}

// PublishPreview renders the template and writes the HTML to blob storage
// under a stable slug, making it reachable from a browser without auth.
func (s *Service) PublishPreview(ctx context.Context, userID, id string) (*Template, error) {
	if s.blobs == nil {
		return nil, ErrHostingNotConfigured
	}

	tpl, err := s.templates.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	html, err := s.renderer.Render(ctx, tpl.Document, render.Strict)
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}

	// The slug is minted once and reused so republishing keeps the URL.
	if tpl.PreviewSlug == "" {
		tpl.PreviewSlug = slug.Make(tpl.Name, slug.WithSuffix(previewSlugSuffixLength))
	}
	obj, err := s.blobs.Put(ctx, previewKeyPrefix(tpl.PreviewSlug)+"index.html", []byte(html), "text/html; charset=utf-8")
	if err != nil {
		return nil, fmt.Errorf("publish preview: %w", err)
	}

	tpl.PreviewURL = obj.URL
	tpl.UpdatedAt = time.Now()
	if err := s.templates.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// PreviewQR returns a QR code PNG pointing at the published preview.
func (s *Service) PreviewQR(ctx context.Context, userID, id string) ([]byte, error) {
	tpl, err := s.templates.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if tpl.PreviewURL == "" {
		return nil, ErrPreviewNotPublished
	}
	return qrcode.Generate(tpl.PreviewURL, 0)
}

// Presets returns the embedded starter briefs.
func (s *Service) Presets() []Preset {
	out := make([]Preset, len(s.presets))
	copy(out, s.presets)
	return out
}

// SearchTemplates resolves index hits back through the store, dropping ids
// whose templates were deleted since they were indexed.
func (s *Service) SearchTemplates(ctx context.Context, userID, query string, limit int) ([]Template, error) {
	if s.indexer == nil {
		return nil, ErrSearchUnavailable
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	ids, err := s.indexer.Search(ctx, userID, query, limit)
	if err != nil {
		return nil, err
	}

	found := make([]Template, 0, len(ids))
	for _, id := range ids {
		tpl, err := s.templates.Get(ctx, userID, id)
		if err != nil {
			continue
		}
		found = append(found, *tpl)
	}
	return found, nil
}

// ValidateDocument runs the structural and strict-render checks without
// touching any stored state.
func (s *Service) ValidateDocument(ctx context.Context, document string) ValidationResult {
	return s.validator.Validate(ctx, document)
}

func (s *Service) indexTemplate(ctx context.Context, tpl *Template) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.Index(ctx, tpl); err != nil {
		s.log.Warn("index template failed",
			slog.String("template_id", tpl.ID),
			slog.String("error", err.Error()))
	}
}

func previewKeyPrefix(slug string) string {
	return "previews/" + slug + "/"
}
