package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/connerkup/ecometrics/internal/api/middleware"
	"github.com/connerkup/ecometrics/internal/api/response"
	"github.com/connerkup/ecometrics/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	CreateCompanyHandler     http.HandlerFunc
	ListCompaniesHandler     http.HandlerFunc
	GetCompanyHandler        http.HandlerFunc
	DeactivateCompanyHandler http.HandlerFunc
	ListTablesHandler        http.HandlerFunc
	ListSourcesHandler       http.HandlerFunc

	GetConfigHandler http.HandlerFunc
	PutConfigHandler http.HandlerFunc

	UploadHandler http.HandlerFunc
	SampleHandler http.HandlerFunc

	ReportHandler  http.HandlerFunc
	SummaryHandler http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		// Read surface
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeRead))

			r.Get("/api/v1/companies", orNotImplemented(deps.ListCompaniesHandler))
			r.Get("/api/v1/companies/{companyID}", orNotImplemented(deps.GetCompanyHandler))
			r.Get("/api/v1/companies/{companyID}/tables", orNotImplemented(deps.ListTablesHandler))
			r.Get("/api/v1/companies/{companyID}/sources", orNotImplemented(deps.ListSourcesHandler))
			r.Get("/api/v1/companies/{companyID}/configs/{kind}", orNotImplemented(deps.GetConfigHandler))
			r.Get("/api/v1/companies/{companyID}/reports/{category}", orNotImplemented(deps.ReportHandler))
			r.Get("/api/v1/companies/{companyID}/summary", orNotImplemented(deps.SummaryHandler))
		})

		// Write surface
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeUpload))

			r.Post("/api/v1/companies/{companyID}/uploads/{category}", orNotImplemented(deps.UploadHandler))
			r.Post("/api/v1/companies/{companyID}/samples/{category}", orNotImplemented(deps.SampleHandler))
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeAdmin))

			r.Post("/api/v1/companies", orNotImplemented(deps.CreateCompanyHandler))
			r.Delete("/api/v1/companies/{companyID}", orNotImplemented(deps.DeactivateCompanyHandler))
			r.Put("/api/v1/companies/{companyID}/configs/{kind}", orNotImplemented(deps.PutConfigHandler))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
