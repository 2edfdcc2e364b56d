package campaigns

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/handler"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/binder"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/userid"
)

// RouterOptions configures the campaigns module router. Service is required.
type RouterOptions struct {
	Service *Service

	// ErrorHandler renders failures; the package default is used when nil.
	ErrorHandler handler.ErrorHandler[handler.Context]
}

// Router mounts the campaign API. Unlike the templates router it owns no
// top-level prefixes, so mount it under /campaigns.
//
// Example:
//
//	r.Mount("/campaigns", campaigns.Router(campaigns.RouterOptions{
//	    Service:      svc,
//	    ErrorHandler: errorHandler,
//	}))
func Router(opts RouterOptions) chi.Router {
	rt := &router{svc: opts.Service, errorHandler: opts.ErrorHandler}

	r := chi.NewRouter()

	r.Post("/", handler.Wrap(rt.create,
		handler.WithBinders[handler.Context, createRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, createRequest](rt.errorHandler),
	))
	r.Get("/", handler.Wrap(rt.list,
		handler.WithBinders[handler.Context, listRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, listRequest](rt.errorHandler),
	))

	r.Route("/{id}", func(ir chi.Router) {
		ir.Get("/", handler.Wrap(rt.get,
			handler.WithBinders[handler.Context, campaignIDRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, campaignIDRequest](rt.errorHandler),
		))
		ir.Post("/submit", handler.Wrap(rt.submit,
			handler.WithBinders[handler.Context, campaignIDRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, campaignIDRequest](rt.errorHandler),
		))
		ir.Post("/test-send", handler.Wrap(rt.testSend,
			handler.WithBinders[handler.Context, testSendRequest](
				binder.JSON(),
				binder.Path(chi.URLParam),
			),
			handler.WithErrorHandler[handler.Context, testSendRequest](rt.errorHandler),
		))
	})

	return r
}

type router struct {
	svc          *Service
	errorHandler handler.ErrorHandler[handler.Context]
}

type createRequest struct {
	TemplateID string   `json:"templateId"`
	Name       string   `json:"name"`
	Subject    string   `json:"subject"`
	Recipients []string `json:"recipients"`
}

func (rt *router) create(ctx handler.Context, req createRequest) handler.Response {
	c, err := rt.svc.Create(ctx, CreateCampaignParams{
		UserID:     userid.FromContext(ctx),
		TemplateID: req.TemplateID,
		Name:       req.Name,
		Subject:    req.Subject,
		Recipients: req.Recipients,
	})
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(c, handler.WithJSONStatus(http.StatusCreated))
}

type listRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (rt *router) list(ctx handler.Context, req listRequest) handler.Response {
	items, err := rt.svc.List(ctx, userid.FromContext(ctx), req.Limit, req.Offset)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(items, handler.WithJSONMeta(map[string]any{
		"count":  len(items),
		"offset": max(req.Offset, 0),
	}))
}

type campaignIDRequest struct {
	ID string `path:"id"`
}

func (rt *router) get(ctx handler.Context, req campaignIDRequest) handler.Response {
	c, err := rt.svc.Get(ctx, userid.FromContext(ctx), req.ID)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(c)
}

func (rt *router) submit(ctx handler.Context, req campaignIDRequest) handler.Response {
	c, err := rt.svc.Submit(ctx, userid.FromContext(ctx), req.ID)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(c)
}

type testSendRequest struct {
	ID        string `path:"id" json:"-"`
	Recipient string `json:"recipient"`
}

func (rt *router) testSend(ctx handler.Context, req testSendRequest) handler.Response {
	err := rt.svc.TestSend(ctx, TestSendParams{
		UserID:     userid.FromContext(ctx),
		CampaignID: req.ID,
		Recipient:  req.Recipient,
	})
	if err != nil {
		// The test-send form has a single recipient field; name it rather
		// than the campaign's recipients list.
		if errors.Is(err, ErrInvalidRecipient) {
			return handler.Error(fieldError("recipient", err.Error()))
		}
		return handler.Error(mapDomainError(err))
	}
	return handler.Empty()
}

// mapDomainError translates module errors into transport errors. Lifecycle
// violations surface as conflicts; everything about the campaign's content is
// a validation error.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, ErrCampaignNotFound):
		return handler.ErrNotFound.Wrap(err)

	case errors.Is(err, ErrEmptySubject):
		return fieldError("subject", ErrEmptySubject.Error())
	case errors.Is(err, ErrTemplateMissing):
		return fieldError("templateId", ErrTemplateMissing.Error())
	case errors.Is(err, ErrNoRecipients):
		return fieldError("recipients", ErrNoRecipients.Error())
	case errors.Is(err, ErrInvalidRecipient):
		return fieldError("recipients", err.Error())

	case errors.Is(err, ErrInvalidTransition):
		return handler.ErrConflict.WithMessage(err.Error()).Wrap(err)
	}
	return err
}

func fieldError(field, message string) error {
	verr := handler.NewValidationError()
	verr.Add(field, message)
	return verr
}
