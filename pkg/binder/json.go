package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/sanitizer"
)

// DefaultMaxJSONSize is the default maximum size for JSON request bodies (1MB).
const DefaultMaxJSONSize = 1 << 20 // 1 MB

// JSON creates a JSON body binder. Unknown fields and trailing data are
// rejected, and every bound string is scrubbed of NUL bytes and terminal
// control sequences.
//
// Example:
//
//	h := handler.HandlerFunc[handler.Context, saveRequest](
//		func(ctx handler.Context, req saveRequest) handler.Response {
//			// req is populated from the JSON body
//			return handler.JSON(out)
//		},
//	)
//
//	r.Post("/templates", handler.Wrap(h,
//		handler.WithBinders[handler.Context, saveRequest](binder.JSON()),
//	))
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: missing content-type header, expected application/json", ErrMissingContentType)
		}
		mediaType, _, _ := strings.Cut(contentType, ";")
		if strings.TrimSpace(mediaType) != "application/json" {
			return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, mediaType)
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxJSONSize+1))
		if err != nil {
			return fmt.Errorf("%w: read request body: %v", ErrInvalidJSON, err)
		}
		if len(body) > DefaultMaxJSONSize {
			return fmt.Errorf("%w: request body too large (max %d bytes)", ErrInvalidJSON, DefaultMaxJSONSize)
		}

		decoder := json.NewDecoder(bytes.NewReader(body))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrInvalidJSON)
			}
			return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}

		var extra json.RawMessage
		if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
		}

		sanitizeBoundStrings(reflect.ValueOf(v))
		return nil
	}
}

// sanitizeBoundStrings scrubs every settable string reachable from v of NUL
// bytes and terminal control sequences. Whitespace and markup pass through
// untouched so document payloads survive binding verbatim. Map values are
// not addressable and stay as decoded.
func sanitizeBoundStrings(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if !rv.IsNil() {
			sanitizeBoundStrings(rv.Elem())
		}
	case reflect.String:
		if rv.CanSet() {
			rv.SetString(sanitizer.RemoveControlSequences(sanitizer.RemoveNullBytes(rv.String())))
		}
	case reflect.Struct:
		for i := range rv.NumField() {
			sanitizeBoundStrings(rv.Field(i))
		}
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			sanitizeBoundStrings(rv.Index(i))
		}
	}
}
