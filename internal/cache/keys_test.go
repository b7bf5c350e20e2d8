package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/connerkup/ecometrics/pkg/models"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "report:sales:acme", ReportKey("acme", models.CategorySales))
	assert.Equal(t, "report:esg:", ReportKey("", models.CategoryESG))
	assert.Equal(t, "summary:acme", SummaryKey("acme"))
	assert.Equal(t, "ratelimit:em_12345", RateLimitKey("em_12345"))
}

func TestReportInvalidationKeys(t *testing.T) {
	keys := ReportInvalidationKeys("acme", models.CategorySales)

	assert.Equal(t, []string{
		"report:sales:acme",
		"report:sales:",
		"summary:acme",
	}, keys)
}
