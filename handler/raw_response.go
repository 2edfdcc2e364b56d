package handler

import (
	"io"
	"net/http"
	"strconv"
)

// htmlResponse serves a rendered HTML document as-is.
type htmlResponse struct {
	status int
	body   string
}

// Render writes the HTML body with a text/html content type
func (h htmlResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(h.status)
	_, err := io.WriteString(w, h.body)
	return err
}

// HTML creates a response that serves the given markup with status 200.
// Use it for endpoints that return a rendered document rather than JSON,
// such as template previews.
//
// Example:
//
//	handler := handler.HandlerFunc[handler.Context, PreviewRequest](
//		func(ctx handler.Context, req PreviewRequest) handler.Response {
//			html, err := svc.PreviewTemplate(ctx.Request().Context(), req.UserID, req.ID)
//			if err != nil {
//				return handler.Error(err)
//			}
//			return handler.HTML(html)
//		},
//	)
func HTML(body string) Response {
	return htmlResponse{
		status: http.StatusOK,
		body:   body,
	}
}

// HTMLWithStatus creates an HTML response with a custom status code.
func HTMLWithStatus(body string, status int) Response {
	return htmlResponse{
		status: status,
		body:   body,
	}
}

// blobResponse serves raw bytes with an explicit content type.
type blobResponse struct {
	status      int
	contentType string
	body        []byte
}

// Render writes the bytes with the configured content type
func (b blobResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", b.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(b.body)))
	w.WriteHeader(b.status)
	_, err := w.Write(b.body)
	return err
}

// Blob creates a response that serves raw bytes with status 200.
// Use it for binary payloads such as generated images.
//
// Example:
//
//	png, err := svc.PreviewQR(ctx.Request().Context(), req.UserID, req.ID)
//	if err != nil {
//		return handler.Error(err)
//	}
//	return handler.Blob("image/png", png)
func Blob(contentType string, body []byte) Response {
	return blobResponse{
		status:      http.StatusOK,
		contentType: contentType,
		body:        body,
	}
}
