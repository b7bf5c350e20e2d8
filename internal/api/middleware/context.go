package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	companyIDKey    contextKey = "company_id"
	keyPrefixKey    contextKey = "key_prefix"
	apiKeyScopesKey contextKey = "api_key_scopes"
)

func setCompanyID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, companyIDKey, id)
}

// GetCompanyID returns the company the authenticated key is bound to. Keys
// without a binding (the admin bootstrap key, shared keys) return "" with
// ok=true once authenticated.
func GetCompanyID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(companyIDKey).(string)
	return id, ok
}

func setKeyPrefix(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, keyPrefixKey, prefix)
}

func getKeyPrefix(r *http.Request) (string, bool) {
	prefix, ok := r.Context().Value(keyPrefixKey).(string)
	return prefix, ok
}

func setScopes(ctx context.Context, scopes []string) context.Context {
	return context.WithValue(ctx, apiKeyScopesKey, scopes)
}

func getScopes(r *http.Request) []string {
	scopes, _ := r.Context().Value(apiKeyScopesKey).([]string)
	return scopes
}

// WithTestIdentity stamps an authenticated identity onto a request context.
// Only for tests.
func WithTestIdentity(ctx context.Context, companyID, prefix string, scopes []string) context.Context {
	ctx = setCompanyID(ctx, companyID)
	ctx = setKeyPrefix(ctx, prefix)
	return setScopes(ctx, scopes)
}
