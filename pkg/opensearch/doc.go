// Package opensearch wraps the official client with env-driven config and a
// connection-time healthcheck. It backs the optional template search index.
package opensearch
