package auth

import (
	"net/http"
	"strings"
)

// Policy decides which requests must carry a valid token. Station reads are
// public; every other API route requires an authenticated user.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth entirely.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiresAuth resolves whether the request needs an authenticated user.
func (p Policy) RequiresAuth(r *http.Request) bool {
	if r == nil || p.IsExempt(r) {
		return false
	}
	path := r.URL.Path
	method := r.Method

	if path == "/api/v1/stations" || strings.HasPrefix(path, "/api/v1/stations/") {
		switch method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return false
		}
		return true
	}
	return strings.HasPrefix(path, "/api/")
}
