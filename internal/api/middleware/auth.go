package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/connerkup/ecometrics/internal/api/response"
	"github.com/connerkup/ecometrics/internal/store"
	"github.com/connerkup/ecometrics/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const keyPrefixLen = 8

// adminKeyPrefix is the rate-limit identity of the bootstrap admin key. A
// fixed label, so no part of the real key ends up in Redis key names.
const adminKeyPrefix = "admin-env"

// Auth provides authentication and scope-checking middleware. Keys live in
// the database bcrypt-hashed; the configured admin key is checked first so
// key management works before any key exists.
type Auth struct {
	store    store.Store
	adminKey string
}

// NewAuth creates an Auth middleware. adminKey may be empty to disable the
// bootstrap key.
func NewAuth(s store.Store, adminKey string) *Auth {
	return &Auth{store: s, adminKey: adminKey}
}

// Authenticate validates the Bearer token, looks up the API key, and sets
// company_id, key_prefix, and scopes in the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := extractBearerToken(r)
		if rawKey == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		if a.adminKey != "" &&
			subtle.ConstantTimeCompare([]byte(rawKey), []byte(a.adminKey)) == 1 {
			ctx := setCompanyID(r.Context(), "")
			ctx = setKeyPrefix(ctx, adminKeyPrefix)
			ctx = setScopes(ctx, []string{models.ScopeRead, models.ScopeUpload, models.ScopeAdmin})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if len(rawKey) < keyPrefixLen {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid API key format", nil)
			return
		}

		prefix := rawKey[:keyPrefixLen]

		keys, err := a.store.GetAPIKeyByPrefix(r.Context(), prefix)
		if err != nil {
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to validate API key", nil)
			return
		}

		// Find matching key by bcrypt comparison
		var matched bool
		for _, key := range keys {
			if bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(rawKey)) == nil {
				ctx := setCompanyID(r.Context(), key.CompanyID)
				ctx = setKeyPrefix(ctx, prefix)
				ctx = setScopes(ctx, key.Scopes)
				r = r.WithContext(ctx)
				matched = true

				// Update last_used_at async
				go a.store.UpdateAPIKeyLastUsed(context.Background(), key.ID)
				break
			}
		}

		if !matched {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid API key", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireScope returns middleware that checks whether the authenticated
// API key has the specified scope.
func (a *Auth) RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scopes := getScopes(r)
			for _, s := range scopes {
				if s == scope {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Error(w, http.StatusForbidden,
				"FORBIDDEN", "Insufficient permissions", nil)
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
