package templates

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/handler"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/binder"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/ratelimiter"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/userid"
)

// RouterOptions configures the templates module router. Service is required;
// the rest is optional wiring.
type RouterOptions struct {
	Service *Service

	// ErrorHandler renders failures; the package default is used when nil.
	ErrorHandler handler.ErrorHandler[handler.Context]

	// GenerateLimiter throttles the generation endpoints per user. No
	// limiter means no throttling (tests, local development).
	GenerateLimiter *ratelimiter.Limiter
}

// Router mounts the template API.
//
// Example:
//
//	r.Mount("/", templates.Router(templates.RouterOptions{
//	    Service:         svc,
//	    ErrorHandler:    errorHandler,
//	    GenerateLimiter: limiter,
//	}))
func Router(opts RouterOptions) chi.Router {
	rt := &router{svc: opts.Service, errorHandler: opts.ErrorHandler}

	r := chi.NewRouter()

	// Generation endpoints carry the LLM cost; they get their own
	// rate-limited group.
	r.Group(func(g chi.Router) {
		if opts.GenerateLimiter != nil {
			g.Use(ratelimiter.Middleware(opts.GenerateLimiter, byUser))
		}

		g.Post("/generate", handler.Wrap(rt.generate,
			handler.WithBinders[handler.Context, generateRequest](binder.JSON()),
			handler.WithErrorHandler[handler.Context, generateRequest](rt.errorHandler),
		))
		g.Post("/refine", handler.Wrap(rt.refine,
			handler.WithBinders[handler.Context, refineRequest](binder.JSON()),
			handler.WithErrorHandler[handler.Context, refineRequest](rt.errorHandler),
		))
	})

	r.Get("/presets", handler.Wrap(rt.presets,
		handler.WithErrorHandler[handler.Context, struct{}](rt.errorHandler),
	))

	r.Route("/templates", func(tr chi.Router) {
		tr.Get("/", handler.Wrap(rt.list,
			handler.WithBinders[handler.Context, listRequest](binder.Query()),
			handler.WithErrorHandler[handler.Context, listRequest](rt.errorHandler),
		))
		tr.Post("/", handler.Wrap(rt.save,
			handler.WithBinders[handler.Context, saveRequest](binder.JSON()),
			handler.WithErrorHandler[handler.Context, saveRequest](rt.errorHandler),
		))
		tr.Get("/search", handler.Wrap(rt.search,
			handler.WithBinders[handler.Context, searchRequest](binder.Query()),
			handler.WithErrorHandler[handler.Context, searchRequest](rt.errorHandler),
		))
		tr.Post("/validate", handler.Wrap(rt.validate,
			handler.WithBinders[handler.Context, validateRequest](binder.JSON()),
			handler.WithErrorHandler[handler.Context, validateRequest](rt.errorHandler),
		))

		tr.Route("/{id}", func(ir chi.Router) {
			ir.Get("/", handler.Wrap(rt.get,
				handler.WithBinders[handler.Context, templateIDRequest](binder.Path(chi.URLParam)),
				handler.WithErrorHandler[handler.Context, templateIDRequest](rt.errorHandler),
			))
			ir.Put("/", handler.Wrap(rt.update,
				handler.WithBinders[handler.Context, updateRequest](
					binder.JSON(),
					binder.Path(chi.URLParam),
				),
				handler.WithErrorHandler[handler.Context, updateRequest](rt.errorHandler),
			))
			ir.Delete("/", handler.Wrap(rt.remove,
				handler.WithBinders[handler.Context, templateIDRequest](binder.Path(chi.URLParam)),
				handler.WithErrorHandler[handler.Context, templateIDRequest](rt.errorHandler),
			))
			ir.Get("/preview", handler.Wrap(rt.preview,
				handler.WithBinders[handler.Context, templateIDRequest](binder.Path(chi.URLParam)),
				handler.WithErrorHandler[handler.Context, templateIDRequest](rt.errorHandler),
			))
			ir.Get("/links", handler.Wrap(rt.links,
				handler.WithBinders[handler.Context, linksRequest](
					binder.Path(chi.URLParam),
					binder.Query(),
				),
				handler.WithErrorHandler[handler.Context, linksRequest](rt.errorHandler),
			))
			ir.Post("/publish", handler.Wrap(rt.publish,
				handler.WithBinders[handler.Context, templateIDRequest](binder.Path(chi.URLParam)),
				handler.WithErrorHandler[handler.Context, templateIDRequest](rt.errorHandler),
			))
			ir.Get("/qr", handler.Wrap(rt.qr,
				handler.WithBinders[handler.Context, templateIDRequest](binder.Path(chi.URLParam)),
				handler.WithErrorHandler[handler.Context, templateIDRequest](rt.errorHandler),
			))
		})
	})

	return r
}

// byUser keys rate limit buckets by the acting user.
func byUser(r *http.Request) string {
	return userid.FromContext(r.Context())
}

type router struct {
	svc          *Service
	errorHandler handler.ErrorHandler[handler.Context]
}

type generateRequest struct {
	Prompt            string            `json:"prompt"`
	ConversationID    string            `json:"conversationId"`
	Images            []ImageAttachment `json:"images"`
	ExtractedFileText string            `json:"extractedFileText"`
}

func (rt *router) generate(ctx handler.Context, req generateRequest) handler.Response {
	outcome, err := rt.svc.Generate(ctx, GenerationRequest{
		Prompt:            req.Prompt,
		ConversationID:    req.ConversationID,
		UserID:            userid.FromContext(ctx),
		Images:            req.Images,
		ExtractedFileText: req.ExtractedFileText,
	})
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(outcome)
}

type refineRequest struct {
	Document          string            `json:"document"`
	Feedback          string            `json:"feedback"`
	ConversationID    string            `json:"conversationId"`
	Images            []ImageAttachment `json:"images"`
	ExtractedFileText string            `json:"extractedFileText"`
}

func (rt *router) refine(ctx handler.Context, req refineRequest) handler.Response {
	outcome, err := rt.svc.Refine(ctx, RefineRequest{
		Document:          req.Document,
		Feedback:          req.Feedback,
		ConversationID:    req.ConversationID,
		UserID:            userid.FromContext(ctx),
		Images:            req.Images,
		ExtractedFileText: req.ExtractedFileText,
	})
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(outcome)
}

func (rt *router) presets(ctx handler.Context, _ struct{}) handler.Response {
	return handler.JSON(rt.svc.Presets())
}

type listRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (rt *router) list(ctx handler.Context, req listRequest) handler.Response {
	items, err := rt.svc.ListTemplates(ctx, userid.FromContext(ctx), req.Limit, req.Offset)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(items, handler.WithJSONMeta(map[string]any{
		"count":  len(items),
		"offset": max(req.Offset, 0),
	}))
}

type saveRequest struct {
	Name           string `json:"name"`
	Document       string `json:"document"`
	ConversationID string `json:"conversationId"`
	AttemptsUsed   int    `json:"attemptsUsed"`
	HadErrors      bool   `json:"hadErrors"`
}

func (rt *router) save(ctx handler.Context, req saveRequest) handler.Response {
	tpl, err := rt.svc.SaveTemplate(ctx, SaveTemplateParams{
		UserID:         userid.FromContext(ctx),
		Name:           req.Name,
		Document:       req.Document,
		ConversationID: req.ConversationID,
		AttemptsUsed:   req.AttemptsUsed,
		HadErrors:      req.HadErrors,
	})
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(tpl, handler.WithJSONStatus(http.StatusCreated))
}

type searchRequest struct {
	Query string `query:"q"`
	Limit int    `query:"limit"`
}

func (rt *router) search(ctx handler.Context, req searchRequest) handler.Response {
	items, err := rt.svc.SearchTemplates(ctx, userid.FromContext(ctx), req.Query, req.Limit)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(items)
}

type validateRequest struct {
	Document string `json:"document"`
}

type validateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func (rt *router) validate(ctx handler.Context, req validateRequest) handler.Response {
	result := rt.svc.ValidateDocument(ctx, req.Document)
	return handler.JSON(validateResponse{Valid: result.Valid, Error: result.Error})
}

type templateIDRequest struct {
	ID string `path:"id"`
}

func (rt *router) get(ctx handler.Context, req templateIDRequest) handler.Response {
	tpl, err := rt.svc.GetTemplate(ctx, userid.FromContext(ctx), req.ID)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(tpl)
}

type updateRequest struct {
	ID       string `path:"id" json:"-"`
	Name     string `json:"name"`
	Document string `json:"document"`
}

func (rt *router) update(ctx handler.Context, req updateRequest) handler.Response {
	tpl, err := rt.svc.UpdateTemplate(ctx, UpdateTemplateParams{
		UserID:   userid.FromContext(ctx),
		ID:       req.ID,
		Name:     req.Name,
		Document: req.Document,
	})
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(tpl)
}

func (rt *router) remove(ctx handler.Context, req templateIDRequest) handler.Response {
	if err := rt.svc.DeleteTemplate(ctx, userid.FromContext(ctx), req.ID); err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.Empty()
}

func (rt *router) preview(ctx handler.Context, req templateIDRequest) handler.Response {
	html, err := rt.svc.PreviewTemplate(ctx, userid.FromContext(ctx), req.ID)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.HTML(html)
}

type linksRequest struct {
	ID   string `path:"id"`
	Live bool   `query:"live"`
}

func (rt *router) links(ctx handler.Context, req linksRequest) handler.Response {
	report, err := rt.svc.CheckLinks(ctx, userid.FromContext(ctx), req.ID, req.Live)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(report)
}

func (rt *router) publish(ctx handler.Context, req templateIDRequest) handler.Response {
	tpl, err := rt.svc.PublishPreview(ctx, userid.FromContext(ctx), req.ID)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(tpl)
}

func (rt *router) qr(ctx handler.Context, req templateIDRequest) handler.Response {
	png, err := rt.svc.PreviewQR(ctx, userid.FromContext(ctx), req.ID)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.Blob("image/png", png)
}

// mapDomainError translates module errors into transport errors. Fatal
// generation errors keep their actionable text; infrastructure detail stays
// in the logs.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, ErrTemplateNotFound), errors.Is(err, ErrConversationNotFound):
		return handler.ErrNotFound.Wrap(err)

	case errors.Is(err, ErrEmptyPrompt):
		return fieldError("prompt", ErrEmptyPrompt.Error())
	case errors.Is(err, ErrEmptyFeedback):
		return fieldError("feedback", ErrEmptyFeedback.Error())
	case errors.Is(err, ErrTooManyImages):
		return fieldError("images", ErrTooManyImages.Error())
	case errors.Is(err, ErrInvalidDocument):
		msg := strings.TrimPrefix(err.Error(), ErrInvalidDocument.Error()+": ")
		return fieldError("document", msg)

	case errors.Is(err, ErrGenerationTimeout):
		return handler.ErrGatewayTimeout.WithMessage(ErrGenerationTimeout.Error()).Wrap(err)
	case errors.Is(err, ErrTruncatedOutput):
		return handler.NewHTTPError(http.StatusUnprocessableEntity, "output_truncated").
			WithMessage(ErrTruncatedOutput.Error()).Wrap(err)
	case errors.Is(err, ErrServiceBusy):
		return handler.NewHTTPError(http.StatusServiceUnavailable, "service_busy").
			WithMessage(ErrServiceBusy.Error()).Wrap(err)

	case errors.Is(err, ErrSearchUnavailable):
		return handler.ErrServiceUnavailable.WithMessage(ErrSearchUnavailable.Error()).Wrap(err)
	case errors.Is(err, ErrHostingNotConfigured):
		return handler.ErrServiceUnavailable.WithMessage(ErrHostingNotConfigured.Error()).Wrap(err)
	case errors.Is(err, ErrPreviewNotPublished):
		return handler.ErrConflict.WithMessage(ErrPreviewNotPublished.Error()).Wrap(err)
	}
	return err
}

func fieldError(field, message string) error {
	verr := handler.NewValidationError()
	verr.Add(field, message)
	return verr
}
