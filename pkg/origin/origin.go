// Package origin canonicalizes caller-supplied origins used to build
// payment processor redirect URLs.
package origin

import (
	"net/url"
	"strings"
)

// Normalize returns a bare scheme://host[:port] origin. Unparseable input
// falls back to fallback. Any non-local origin is forced to https.
func Normalize(raw, fallback string) string {
	candidate := strings.TrimSpace(raw)
	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Host == "" {
		parsed, err = url.Parse(strings.TrimSpace(fallback))
		if err != nil || parsed.Host == "" {
			return strings.TrimSpace(fallback)
		}
	}

	scheme := "https"
	if isLocalHost(parsed.Hostname()) {
		scheme = parsed.Scheme
		if scheme == "" {
			scheme = "http"
		}
	}

	return scheme + "://" + parsed.Host
}

// BuildURL resolves path against a normalized origin. The path may carry a
// query string.
func BuildURL(origin, path string) string {
	base := strings.TrimRight(origin, "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func isLocalHost(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1":
		return true
	default:
		return false
	}
}
