// Package handler provides type-safe HTTP request handling for JSON APIs.
//
// The package centers around generic handler functions that bind HTTP
// requests to Go structs and return typed responses, eliminating manual
// request parsing and response encoding while keeping compile-time
// guarantees:
//
//	type CreateTemplateRequest struct {
//		Name     string `json:"name"`
//		Document string `json:"document"`
//	}
//
//	func createTemplate(ctx handler.Context, req CreateTemplateRequest) handler.Response {
//		tpl, err := svc.SaveTemplate(ctx.Request().Context(), params(req))
//		if err != nil {
//			return handler.Error(err)
//		}
//		return handler.JSON(tpl, handler.WithJSONStatus(http.StatusCreated))
//	}
//
//	r.Post("/templates", handler.Wrap(createTemplate,
//		handler.WithBinders[handler.Context, CreateTemplateRequest](binder.JSON()),
//	))
//
// # Layers
//
// 1. HandlerFunc - generic function type taking a typed request, returning a Response
// 2. Response - common interface for JSON, HTML, binary, and empty responses
// 3. Binders - request decoding stages applied in order (JSON body, query, path)
// 4. ErrorHandler - classification, logging, and rendering of failures
//
// # Response Types
//
//	handler.JSON(data)                       // 200 OK with {"data": ...}
//	handler.JSON(data, WithJSONStatus(201))  // custom status
//	handler.JSONError(err)                   // error body without logging
//	handler.HTML(markup)                     // rendered document
//	handler.Blob("image/png", bytes)         // binary payload
//	handler.Empty()                          // 204 No Content
//	handler.Error(err)                       // defer to the error handler
//
// # Error Handling
//
// Errors reach the configured ErrorHandler, which maps them to a status
// code and stable machine key:
//
//	handler.ErrNotFound     // 404, key "not_found"
//	handler.ErrUnauthorized // 401, key "unauthorized"
//
//	verr := handler.NewValidationError()
//	verr.Add("email", "email is required")
//	return handler.Error(verr) // 422 with field details
//
// Wrap underlying causes so logs keep the detail while the body stays
// generic:
//
//	return handler.Error(handler.ErrNotFound.Wrap(err))
//
// NewErrorHandler builds the production handler: it logs with request scope
// and renders the classified error as JSON.
package handler
