package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	mw "github.com/connerkup/ecometrics/internal/api/middleware"
	"github.com/connerkup/ecometrics/internal/cache/cachetest"
	"github.com/connerkup/ecometrics/internal/store/storetest"
)

const testAdminKey = "router-test-admin-key-0123456789"

func newTestRouter() http.Handler {
	return NewRouter(Dependencies{
		Auth:      mw.NewAuth(storetest.New(), testAdminKey),
		RateLimit: mw.NewRateLimit(cachetest.New(), 1000),
		HealthHandler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})
}

func TestRouter_HealthIsPublic(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter()

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/companies"},
		{"POST", "/api/v1/companies"},
		{"GET", "/api/v1/companies/acme"},
		{"GET", "/api/v1/companies/acme/configs/products"},
		{"PUT", "/api/v1/companies/acme/configs/products"},
		{"POST", "/api/v1/companies/acme/uploads/sales"},
		{"POST", "/api/v1/companies/acme/samples/sales"},
		{"GET", "/api/v1/companies/acme/reports/sales"},
		{"GET", "/api/v1/companies/acme/summary"},
		{"GET", "/api/v1/companies/acme/tables"},
		{"GET", "/api/v1/companies/acme/sources"},
		{"POST", "/api/v1/admin/keys"},
		{"GET", "/api/v1/admin/keys"},
	}
	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
}

func TestRouter_AdminKeyReachesUnimplementedRoute(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/companies", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// No handler wired in this test, so the placeholder answers.
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/nope", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminKey)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
