// Package binder populates request structs from HTTP requests.
//
// Each constructor returns a bind function matching the handler package's
// binder contract: JSON for request bodies, Form for urlencoded and
// multipart values, Query for URL parameters, and Path for router
// placeholders. Binders stack, so one request type can draw from several
// sources. Fields bind by struct tag (`json`, `form`, `query`, `path`),
// support basic types, slices, and pointers for optional values, and `-`
// skips a field.
package binder
