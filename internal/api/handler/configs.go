package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/connerkup/ecometrics/internal/api/response"
	"github.com/connerkup/ecometrics/internal/registry"
	"github.com/connerkup/ecometrics/internal/store"
	"github.com/connerkup/ecometrics/pkg/models"
)

// NewGetConfigHandler returns the handler for
// GET /api/v1/companies/{companyID}/configs/{kind}.
func NewGetConfigHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := authorizedCompany(w, r)
		if !ok {
			return
		}
		kind, ok := configKind(w, r)
		if !ok {
			return
		}

		cfg, err := reg.GetConfig(r.Context(), companyID, kind)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "CONFIG_NOT_FOUND",
					"No configuration of this kind for this company", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load configuration", nil)
			return
		}

		response.JSON(w, map[string]any{
			"company_id":  companyID,
			"config_type": kind,
			"config":      cfg,
		})
	}
}

// NewPutConfigHandler returns the handler for
// PUT /api/v1/companies/{companyID}/configs/{kind}. The body replaces the
// stored config wholesale; partial updates are not supported.
func NewPutConfigHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := authorizedCompany(w, r)
		if !ok {
			return
		}
		kind, ok := configKind(w, r)
		if !ok {
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read body", nil)
			return
		}

		// Round-trip through the typed config so malformed payloads are
		// rejected here instead of surfacing later as a broken mapping.
		cfg, err := models.UnmarshalConfig(kind, body)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_CONFIG",
				"Configuration payload does not match the config kind", map[string]any{
					"config_type": kind,
					"reason":      err.Error(),
				})
			return
		}

		if _, err := reg.GetCompany(r.Context(), companyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "COMPANY_NOT_FOUND",
					"Company does not exist", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load company", nil)
			return
		}

		if err := reg.SetConfig(r.Context(), companyID, kind, cfg); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to save configuration", nil)
			return
		}

		response.JSON(w, map[string]any{
			"company_id":  companyID,
			"config_type": kind,
			"config":      cfg,
		})
	}
}

func configKind(w http.ResponseWriter, r *http.Request) (models.ConfigKind, bool) {
	kind, err := models.ParseConfigKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"Unknown config kind; use products, metrics, schema, or mappings", nil)
		return "", false
	}
	return kind, true
}
