package handler

import "net/http"

// emptyResponse carries a status code and no body.
type emptyResponse struct {
	status int
}

// Render writes the status code without any body content
func (e emptyResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty creates a 204 No Content response. Use it for deletes and updates
// that have nothing to return.
//
// Example:
//
//	handler := handler.HandlerFunc[handler.Context, DeleteRequest](
//		func(ctx handler.Context, req DeleteRequest) handler.Response {
//			if err := svc.DeleteTemplate(ctx.Request().Context(), req.UserID, req.ID); err != nil {
//				return handler.Error(err)
//			}
//			return handler.Empty()
//		},
//	)
func Empty() Response {
	return emptyResponse{
		status: http.StatusNoContent,
	}
}

// EmptyWithStatus creates a bodyless response with a custom status code.
func EmptyWithStatus(status int) Response {
	return emptyResponse{
		status: status,
	}
}
