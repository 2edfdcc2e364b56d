package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Middleware resolves the client address and stores it in the request
// context for handlers and log records downstream.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), FromRequest(r))))
	})
}

// FromRequest returns the first valid address among the X-Forwarded-For
// hops, then X-Real-IP, then the TCP peer. Returns "" when nothing parses.
func FromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for hop := range strings.SplitSeq(forwarded, ",") {
			if ip := parseIP(hop); ip != "" {
				return ip
			}
		}
	}
	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port is already a bare address.
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP normalizes an address string, returning "" when it is not an IP.
func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
