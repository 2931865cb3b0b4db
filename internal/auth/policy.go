package auth

import (
	"net/http"
	"strings"
)

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
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

// RequiredRole resolves required role for the request.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case path == "/api/v1/matches":
		if method == http.MethodPost {
			return RoleOrganizer, true
		}
		return RoleMember, true
	case strings.HasPrefix(path, "/api/v1/matches/") && strings.HasSuffix(path, "/recalculate"):
		return RoleOrganizer, true
	case strings.HasPrefix(path, "/api/v1/matches/") && strings.Contains(path, "/overrides"):
		if method == http.MethodGet {
			return RoleMember, true
		}
		return RoleOrganizer, true
	case strings.HasPrefix(path, "/api/v1/matches/") && strings.HasSuffix(path, "/fees"):
		return RoleMember, true
	case strings.HasPrefix(path, "/api/v1/matches/"):
		if method == http.MethodGet {
			return RoleMember, true
		}
		return RoleOrganizer, true
	case path == "/api/v1/stats/monthly":
		return RoleMember, true
	case path == "/api/v1/stats/rollup":
		return RoleOrganizer, true
	case strings.HasPrefix(path, "/api/v1/statements/"):
		if strings.Contains(path, "/export.") {
			return RoleAdmin, true
		}
		return RoleMember, true
	case strings.HasPrefix(path, "/api/v1/settings"):
		if method == http.MethodGet {
			return RoleOrganizer, true
		}
		return RoleAdmin, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return RoleMember, true
		}
		return RoleOrganizer, true
	}
	return "", false
}
