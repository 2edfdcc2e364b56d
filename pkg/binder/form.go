package binder

import (
	"fmt"
	"mime"
	"net/http"
)

// DefaultMaxFormMemory caps the memory used for parsing multipart bodies (10MB).
const DefaultMaxFormMemory = 10 << 20 // 10 MB

// Form creates a binder for application/x-www-form-urlencoded and
// multipart/form-data values. Fields bind by the `form` struct tag the same
// way Query binds its parameters. File parts are not bound; the API carries
// uploads inside JSON payloads instead.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: missing content-type header, expected form encoding", ErrMissingContentType)
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
		}

		switch mediaType {
		case "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
		case "multipart/form-data":
			if err := r.ParseMultipartForm(DefaultMaxFormMemory); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidForm, err)
			}
		default:
			return fmt.Errorf("%w: got %s, expected form encoding", ErrUnsupportedMediaType, mediaType)
		}

		return bindToStruct(v, "form", r.PostForm, ErrInvalidForm)
	}
}
