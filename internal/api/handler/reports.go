package handler

import (
	"net/http"

	"github.com/connerkup/ecometrics/internal/api/response"
	"github.com/connerkup/ecometrics/internal/reporting"
)

// NewCategoryReportHandler returns the handler for
// GET /api/v1/companies/{companyID}/reports/{category}.
func NewCategoryReportHandler(svc *reporting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := authorizedCompany(w, r)
		if !ok {
			return
		}
		cat, ok := dataCategory(w, r)
		if !ok {
			return
		}

		report, err := svc.LoadCategoryData(r.Context(), companyID, cat)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load report data", nil)
			return
		}
		response.JSON(w, report)
	}
}

// NewSummaryHandler returns the handler for
// GET /api/v1/companies/{companyID}/summary.
func NewSummaryHandler(svc *reporting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		companyID, ok := authorizedCompany(w, r)
		if !ok {
			return
		}

		summary, err := svc.CompanySummary(r.Context(), companyID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to compute company summary", nil)
			return
		}
		response.JSON(w, summary)
	}
}
