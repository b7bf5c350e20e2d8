package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/connerkup/ecometrics/internal/api/response"
	"github.com/connerkup/ecometrics/internal/ingest"
	"github.com/connerkup/ecometrics/internal/registry"
	"github.com/connerkup/ecometrics/pkg/models"
)

const maxSampleRows = 10000

// NewUploadHandler returns the handler for
// POST /api/v1/companies/{companyID}/uploads/{category}. The request is
// multipart/form-data with the data file in the "file" field.
func NewUploadHandler(pipe *ingest.Pipeline, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := authorizedCompany(w, r)
		if !ok {
			return
		}
		cat, ok := dataCategory(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
				"Upload exceeds the size limit", map[string]any{"max_bytes": maxBytes})
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				`Multipart field "file" is required`, nil)
			return
		}
		defer file.Close()

		result := pipe.Upload(r.Context(), header.Filename, file, companyID, cat)
		writeUploadResult(w, result)
	}
}

// NewSampleHandler returns the handler for
// POST /api/v1/companies/{companyID}/samples/{category}. Generated rows run
// through the same pipeline as uploaded files.
func NewSampleHandler(reg *registry.Registry, pipe *ingest.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := authorizedCompany(w, r)
		if !ok {
			return
		}
		cat, ok := dataCategory(w, r)
		if !ok {
			return
		}

		var req struct {
			Rows int `json:"rows"`
		}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
				return
			}
		}
		if req.Rows < 0 || req.Rows > maxSampleRows {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"rows must be between 0 and 10000", nil)
			return
		}

		products := reg.ProductLines(r.Context(), companyID)
		ds := ingest.GenerateSample(companyID, cat, req.Rows, products)
		result := pipe.IngestDataset(r.Context(), ds, companyID, cat, "generated_sample")
		writeUploadResult(w, result)
	}
}

func writeUploadResult(w http.ResponseWriter, result *ingest.UploadResult) {
	if result.Succeeded() {
		response.Created(w, result)
		return
	}
	response.Error(w, http.StatusUnprocessableEntity, "UPLOAD_FAILED", result.Message, result)
}

func dataCategory(w http.ResponseWriter, r *http.Request) (models.Category, bool) {
	cat, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
			"Unknown data category; use sales, esg, or supply_chain", nil)
		return "", false
	}
	return cat, true
}
