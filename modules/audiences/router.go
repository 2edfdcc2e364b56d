package audiences

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/handler"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/binder"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/userid"
)

// RouterOptions configures the audiences module router. Service is required.
type RouterOptions struct {
	Service *Service

	// ErrorHandler renders failures; the package default is used when nil.
	ErrorHandler handler.ErrorHandler[handler.Context]
}

// Router mounts the audience API; mount it under /audiences.
func Router(opts RouterOptions) chi.Router {
	rt := &router{svc: opts.Service, errorHandler: opts.ErrorHandler}

	r := chi.NewRouter()

	r.Post("/", handler.Wrap(rt.createList,
		handler.WithBinders[handler.Context, createListRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, createListRequest](rt.errorHandler),
	))
	r.Get("/", handler.Wrap(rt.lists,
		handler.WithBinders[handler.Context, listsRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, listsRequest](rt.errorHandler),
	))

	// Credential endpoints sit outside /{id}; there is one key per user,
	// shared by all their lists.
	r.Put("/credentials", handler.Wrap(rt.setCredential,
		handler.WithBinders[handler.Context, credentialRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, credentialRequest](rt.errorHandler),
	))
	r.Delete("/credentials", handler.Wrap(rt.clearCredential,
		handler.WithErrorHandler[handler.Context, struct{}](rt.errorHandler),
	))

	r.Route("/{id}", func(ir chi.Router) {
		ir.Get("/", handler.Wrap(rt.getList,
			handler.WithBinders[handler.Context, listIDRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, listIDRequest](rt.errorHandler),
		))
		ir.Put("/", handler.Wrap(rt.updateList,
			handler.WithBinders[handler.Context, updateListRequest](
				binder.JSON(),
				binder.Path(chi.URLParam),
			),
			handler.WithErrorHandler[handler.Context, updateListRequest](rt.errorHandler),
		))
		ir.Delete("/", handler.Wrap(rt.deleteList,
			handler.WithBinders[handler.Context, listIDRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, listIDRequest](rt.errorHandler),
		))

		ir.Get("/subscribers", handler.Wrap(rt.subscribers,
			handler.WithBinders[handler.Context, listIDRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, listIDRequest](rt.errorHandler),
		))
		ir.Post("/subscribers", handler.Wrap(rt.addSubscriber,
			handler.WithBinders[handler.Context, addSubscriberRequest](
				binder.JSON(),
				binder.Path(chi.URLParam),
			),
			handler.WithErrorHandler[handler.Context, addSubscriberRequest](rt.errorHandler),
		))
		ir.Delete("/subscribers/{subscriberId}", handler.Wrap(rt.removeSubscriber,
			handler.WithBinders[handler.Context, removeSubscriberRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, removeSubscriberRequest](rt.errorHandler),
		))
		ir.Post("/import", handler.Wrap(rt.importBatch,
			handler.WithBinders[handler.Context, importRequest](
				binder.JSON(),
				binder.Path(chi.URLParam),
			),
			handler.WithErrorHandler[handler.Context, importRequest](rt.errorHandler),
		))

		ir.Post("/reconcile", handler.Wrap(rt.reconcile,
			handler.WithBinders[handler.Context, listIDRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, listIDRequest](rt.errorHandler),
		))
		ir.Post("/reconcile/apply", handler.Wrap(rt.applyReconcile,
			handler.WithBinders[handler.Context, listIDRequest](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, listIDRequest](rt.errorHandler),
		))
	})

	return r
}

type router struct {
	svc          *Service
	errorHandler handler.ErrorHandler[handler.Context]
}

type createListRequest struct {
	Name string `json:"name"`
}

func (rt *router) createList(ctx handler.Context, req createListRequest) handler.Response {
	l, err := rt.svc.CreateList(ctx, userid.FromContext(ctx), req.Name)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(l, handler.WithJSONStatus(http.StatusCreated))
}

type listsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (rt *router) lists(ctx handler.Context, req listsRequest) handler.Response {
	items, err := rt.svc.Lists(ctx, userid.FromContext(ctx), req.Limit, req.Offset)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(items, handler.WithJSONMeta(map[string]any{
		"count":  len(items),
		"offset": max(req.Offset, 0),
	}))
}

type listIDRequest struct {
	ID string `path:"id"`
}

func (rt *router) getList(ctx handler.Context, req listIDRequest) handler.Response {
	l, err := rt.svc.GetList(ctx, userid.FromContext(ctx), req.ID)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(l)
}

type updateListRequest struct {
	ID             string `path:"id" json:"-"`
	Name           string `json:"name"`
	ProviderListID string `json:"providerListId"`
}

func (rt *router) updateList(ctx handler.Context, req updateListRequest) handler.Response {
	l, err := rt.svc.UpdateList(ctx, UpdateListParams{
		UserID:         userid.FromContext(ctx),
		ID:             req.ID,
		Name:           req.Name,
		ProviderListID: req.ProviderListID,
	})
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(l)
}

func (rt *router) deleteList(ctx handler.Context, req listIDRequest) handler.Response {
	if err := rt.svc.DeleteList(ctx, userid.FromContext(ctx), req.ID); err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.Empty()
}

func (rt *router) subscribers(ctx handler.Context, req listIDRequest) handler.Response {
	subs, err := rt.svc.Subscribers(ctx, userid.FromContext(ctx), req.ID)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(subs, handler.WithJSONMeta(map[string]any{
		"count": len(subs),
	}))
}

type addSubscriberRequest struct {
	ID    string `path:"id" json:"-"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (rt *router) addSubscriber(ctx handler.Context, req addSubscriberRequest) handler.Response {
	sub, err := rt.svc.AddSubscriber(ctx, AddSubscriberParams{
		UserID: userid.FromContext(ctx),
		ListID: req.ID,
		Email:  req.Email,
		Name:   req.Name,
	})
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(sub, handler.WithJSONStatus(http.StatusCreated))
}

type removeSubscriberRequest struct {
	ID           string `path:"id"`
	SubscriberID string `path:"subscriberId"`
}

func (rt *router) removeSubscriber(ctx handler.Context, req removeSubscriberRequest) handler.Response {
	err := rt.svc.RemoveSubscriber(ctx, userid.FromContext(ctx), req.ID, req.SubscriberID)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.Empty()
}

type importRequest struct {
	ID      string        `path:"id" json:"-"`
	Entries []ImportEntry `json:"entries"`
}

func (rt *router) importBatch(ctx handler.Context, req importRequest) handler.Response {
	report, err := rt.svc.Import(ctx, ImportParams{
		UserID:  userid.FromContext(ctx),
		ListID:  req.ID,
		Entries: req.Entries,
	})
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(report)
}

type credentialRequest struct {
	APIKey string `json:"apiKey"`
}

func (rt *router) setCredential(ctx handler.Context, req credentialRequest) handler.Response {
	if err := rt.svc.SetCredential(ctx, userid.FromContext(ctx), req.APIKey); err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.Empty()
}

func (rt *router) clearCredential(ctx handler.Context, _ struct{}) handler.Response {
	if err := rt.svc.ClearCredential(ctx, userid.FromContext(ctx)); err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.Empty()
}

func (rt *router) reconcile(ctx handler.Context, req listIDRequest) handler.Response {
	report, err := rt.svc.Reconcile(ctx, userid.FromContext(ctx), req.ID)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(report)
}

func (rt *router) applyReconcile(ctx handler.Context, req listIDRequest) handler.Response {
	report, err := rt.svc.ApplyReconcile(ctx, userid.FromContext(ctx), req.ID)
	if err != nil {
		return handler.Error(mapDomainError(err))
	}
	return handler.JSON(report)
}

// mapDomainError translates module errors into transport errors. A missing
// provider is an availability problem, not a client mistake, so it maps to
// 503 rather than any 4xx.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, ErrListNotFound), errors.Is(err, ErrSubscriberNotFound):
		return handler.ErrNotFound.Wrap(err)

	case errors.Is(err, ErrEmptyName):
		return fieldError("name", ErrEmptyName.Error())
	case errors.Is(err, ErrInvalidEmail):
		return fieldError("email", err.Error())
	case errors.Is(err, ErrEmptyAPIKey):
		return fieldError("apiKey", ErrEmptyAPIKey.Error())
	case errors.Is(err, ErrListNotLinked):
		return fieldError("providerListId", ErrListNotLinked.Error())

	case errors.Is(err, ErrDuplicateSubscriber):
		return handler.ErrConflict.WithMessage(ErrDuplicateSubscriber.Error()).Wrap(err)
	case errors.Is(err, ErrNoCredentials):
		return handler.ErrConflict.WithMessage("store a provider API key first").Wrap(err)

	case errors.Is(err, ErrProviderNotConfigured):
		return handler.ErrServiceUnavailable.WithMessage(ErrProviderNotConfigured.Error()).Wrap(err)
	}
	return err
}

func fieldError(field, message string) error {
	verr := handler.NewValidationError()
	verr.Add(field, message)
	return verr
}
