// Package cdnurl rewrites storage paths and legacy URLs onto the CDN
// domain. All transforms are pure string operations with no I/O.
package cdnurl

import (
	"net/url"
	"strings"
)

// Resolver rewrites raw storage keys and legacy URLs to canonical CDN URLs.
type Resolver struct {
	baseURL string
}

// New creates a Resolver for the given CDN base URL, e.g.
// "https://cdn.example.com".
func New(baseURL string) *Resolver {
	return &Resolver{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Append joins a storage-relative object key onto the CDN domain. An empty
// key stays empty.
func (r *Resolver) Append(key string) string {
	if key == "" {
		return ""
	}
	return r.baseURL + "/" + strings.TrimPrefix(key, "/")
}

// Replace rewrites the host of an absolute legacy URL to the CDN domain,
// keeping path and query (expiry tokens and the like) intact. Relative
// inputs are appended instead.
func (r *Resolver) Replace(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return r.Append(raw)
	}

	base, err := url.Parse(r.baseURL)
	if err != nil {
		return raw
	}
	u.Scheme = base.Scheme
	u.Host = base.Host
	return u.String()
}
