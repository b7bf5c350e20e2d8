// Package handler implements the HTTP handlers for the dashboard API.
// Handlers decode and validate input, call into the registry, pipeline, or
// reporting service, and translate domain errors into response envelopes.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	mw "github.com/connerkup/ecometrics/internal/api/middleware"
	"github.com/connerkup/ecometrics/internal/api/response"
	"github.com/connerkup/ecometrics/internal/registry"
	"github.com/connerkup/ecometrics/internal/store"
)

// Company identifiers travel in URLs and become part of staging table names,
// so the charset is locked down at the boundary.
var companyIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const maxCompanyIDLen = 64

// NewCreateCompanyHandler returns the handler for POST /api/v1/companies.
func NewCreateCompanyHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID          string          `json:"id"`
			Name        string          `json:"name"`
			Industry    string          `json:"industry"`
			Description string          `json:"description"`
			Settings    json.RawMessage `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.ID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "id is required", nil)
			return
		}
		if len(req.ID) > maxCompanyIDLen || !companyIDPattern.MatchString(req.ID) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"id must be 1-64 characters of letters, digits, underscore, or hyphen", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}

		company, err := reg.CreateCompany(r.Context(), registry.CreateParams{
			ID:          req.ID,
			Name:        req.Name,
			Industry:    req.Industry,
			Description: req.Description,
			Settings:    req.Settings,
		})
		if err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				response.Error(w, http.StatusConflict, "DUPLICATE_COMPANY",
					"A company with this id already exists", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to create company", nil)
			return
		}

		response.Created(w, company)
	}
}

// NewListCompaniesHandler returns the handler for GET /api/v1/companies.
func NewListCompaniesHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companies, err := reg.ListCompanies(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list companies", nil)
			return
		}
		response.Collection(w, companies, response.PaginationMeta{
			Page:  1,
			Limit: len(companies),
			Total: len(companies),
		})
	}
}

// NewGetCompanyHandler returns the handler for GET /api/v1/companies/{companyID}.
func NewGetCompanyHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := authorizedCompany(w, r)
		if !ok {
			return
		}
		company, err := reg.GetCompany(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "COMPANY_NOT_FOUND",
					"Company does not exist", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load company", nil)
			return
		}
		response.JSON(w, company)
	}
}

// NewDeactivateCompanyHandler returns the handler for
// DELETE /api/v1/companies/{companyID}. Deactivation is a soft delete: the
// identifier stays reserved and staged data is kept.
func NewDeactivateCompanyHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "companyID")
		if err := reg.DeactivateCompany(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "COMPANY_NOT_FOUND",
					"Company does not exist", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to deactivate company", nil)
			return
		}
		response.JSON(w, map[string]any{"company_id": id, "is_active": false})
	}
}

// NewListCompanyTablesHandler returns the handler for
// GET /api/v1/companies/{companyID}/tables.
func NewListCompanyTablesHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := authorizedCompany(w, r)
		if !ok {
			return
		}
		tables, err := reg.ListCompanyTables(r.Context(), id)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list company tables", nil)
			return
		}
		response.JSON(w, map[string]any{"company_id": id, "tables": tables})
	}
}

// NewListDataSourcesHandler returns the handler for
// GET /api/v1/companies/{companyID}/sources: the upload history recorded by
// the ingest pipeline.
func NewListDataSourcesHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := authorizedCompany(w, r)
		if !ok {
			return
		}
		sources, err := st.ListDataSources(r.Context(), id)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list data sources", nil)
			return
		}
		response.JSON(w, map[string]any{"company_id": id, "sources": sources})
	}
}

// authorizedCompany extracts {companyID} from the URL and checks it against
// the authenticated key's company binding. Unbound keys may act on any
// company.
func authorizedCompany(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "companyID")
	if id == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "company id is required", nil)
		return "", false
	}
	bound, _ := mw.GetCompanyID(r)
	if bound != "" && bound != id {
		response.Error(w, http.StatusForbidden, "FORBIDDEN",
			"API key is not authorized for this company", nil)
		return "", false
	}
	return id, true
}
