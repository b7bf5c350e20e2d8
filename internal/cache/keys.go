package cache

import (
	"fmt"

	"github.com/connerkup/ecometrics/pkg/models"
)

// ReportKey caches a category report for one company. The empty company id
// is the cross-company (shared table) report.
func ReportKey(companyID string, cat models.Category) string {
	return fmt.Sprintf("report:%s:%s", cat, companyID)
}

// SummaryKey caches a company's summary statistics.
func SummaryKey(companyID string) string {
	return fmt.Sprintf("summary:%s", companyID)
}

// RateLimitKey tracks request counts per API key prefix.
func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

// ReportInvalidationKeys lists every cached read an upload for
// (company, category) makes stale.
func ReportInvalidationKeys(companyID string, cat models.Category) []string {
	return []string{
		ReportKey(companyID, cat),
		ReportKey("", cat),
		SummaryKey(companyID),
	}
}
