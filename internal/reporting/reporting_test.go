package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connerkup/ecometrics/internal/cache"
	"github.com/connerkup/ecometrics/internal/cache/cachetest"
	"github.com/connerkup/ecometrics/internal/store/storetest"
	"github.com/connerkup/ecometrics/pkg/models"
)

func salesRows(companyID string, revenues ...float64) *models.Dataset {
	ds := &models.Dataset{Columns: []string{"date", "revenue", "company_id"}}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range revenues {
		ds.Rows = append(ds.Rows, map[string]any{
			"date":       day.AddDate(0, 0, i).Format("2006-01-02"),
			"revenue":    r,
			"company_id": companyID,
		})
	}
	return ds
}

func TestLoadCategoryData_PrefersFactTable(t *testing.T) {
	st := storetest.New()
	st.SeedTable("fact_sales_monthly", salesRows("acme", 100, 200))
	st.SeedTable("stg_sales_data", salesRows("acme", 1, 2, 3))
	svc := New(st, cachetest.New(), time.Minute)

	report, err := svc.LoadCategoryData(context.Background(), "acme", models.CategorySales)
	require.NoError(t, err)

	assert.Equal(t, "fact_sales_monthly", report.Source)
	assert.Len(t, report.Dataset.Rows, 2)
}

func TestLoadCategoryData_FallsBackToStaging(t *testing.T) {
	st := storetest.New()
	st.SeedTable("stg_sales_data", salesRows("acme", 1, 2, 3))
	svc := New(st, cachetest.New(), time.Minute)

	report, err := svc.LoadCategoryData(context.Background(), "acme", models.CategorySales)
	require.NoError(t, err)

	assert.Equal(t, "stg_sales_data", report.Source)
	assert.Len(t, report.Dataset.Rows, 3)
}

func TestLoadCategoryData_SharedFactFallback(t *testing.T) {
	// The company has no rows of its own anywhere; the unfiltered fact table
	// keeps dashboards alive for pre-tenant data.
	st := storetest.New()
	st.SeedTable("fact_sales_monthly", salesRows("legacy", 10, 20))
	svc := New(st, cachetest.New(), time.Minute)

	report, err := svc.LoadCategoryData(context.Background(), "acme", models.CategorySales)
	require.NoError(t, err)

	assert.Equal(t, "fact_sales_monthly (shared fallback)", report.Source)
	assert.Len(t, report.Dataset.Rows, 2)
}

func TestLoadCategoryData_NoDataAnywhere(t *testing.T) {
	svc := New(storetest.New(), cachetest.New(), time.Minute)

	report, err := svc.LoadCategoryData(context.Background(), "acme", models.CategorySales)
	require.NoError(t, err)

	assert.Equal(t, "none", report.Source)
	assert.Empty(t, report.Dataset.Rows)
	assert.Nil(t, report.Insight)
}

func TestLoadCategoryData_CachesResult(t *testing.T) {
	st := storetest.New()
	st.SeedTable("stg_sales_data", salesRows("acme", 1, 2))
	c := cachetest.New()
	svc := New(st, c, time.Minute)
	ctx := context.Background()

	first, err := svc.LoadCategoryData(ctx, "acme", models.CategorySales)
	require.NoError(t, err)
	assert.True(t, c.Has(cache.ReportKey("acme", models.CategorySales)))

	// More rows land, but the cached report is served until invalidation.
	st.SeedTable("stg_sales_data", salesRows("acme", 1, 2, 3, 4))
	second, err := svc.LoadCategoryData(ctx, "acme", models.CategorySales)
	require.NoError(t, err)
	assert.Len(t, second.Dataset.Rows, len(first.Dataset.Rows))

	require.NoError(t, c.Delete(ctx, cache.ReportKey("acme", models.CategorySales)))
	third, err := svc.LoadCategoryData(ctx, "acme", models.CategorySales)
	require.NoError(t, err)
	assert.Len(t, third.Dataset.Rows, 4)
}

func TestLoadCategoryData_InsightMetrics(t *testing.T) {
	st := storetest.New()
	st.SeedTable("stg_sales_data", salesRows("acme", 10, 10, 10, 20, 20, 20))
	svc := New(st, cachetest.New(), time.Minute)

	report, err := svc.LoadCategoryData(context.Background(), "acme", models.CategorySales)
	require.NoError(t, err)

	require.NotNil(t, report.Insight)
	assert.Equal(t, "revenue", report.Insight.Metric)
	assert.Equal(t, 15.0, report.Insight.Mean)
	assert.Equal(t, 10.0, report.Insight.Min)
	assert.Equal(t, 20.0, report.Insight.Max)
	assert.Equal(t, "growing", report.Insight.Trend.Direction)
}

func TestCompanySummary(t *testing.T) {
	st := storetest.New()
	st.SeedTable("stg_sales_data", salesRows("acme", 100, 250))
	st.SeedTable("stg_esg_data", &models.Dataset{
		Columns: []string{"date", "emissions_kg_co2", "company_id"},
		Rows: []map[string]any{
			{"date": "2024-01-01", "emissions_kg_co2": 5.0, "company_id": "acme"},
			{"date": "2024-03-01", "emissions_kg_co2": 7.5, "company_id": "acme"},
		},
	})
	svc := New(st, cachetest.New(), time.Minute)

	summary, err := svc.CompanySummary(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalRecords)
	assert.Equal(t, 2, summary.Records[models.CategorySales])
	assert.Equal(t, 2, summary.Records[models.CategoryESG])
	assert.Equal(t, 0, summary.Records[models.CategorySupplyChain])

	assert.Equal(t, 350.0, summary.KeyMetrics["total_revenue"])
	assert.Equal(t, 12.5, summary.KeyMetrics["total_emissions"])

	span := summary.DateRanges[models.CategoryESG]
	assert.Equal(t, "2024-01-01", span.Start)
	assert.Equal(t, "2024-03-01", span.End)
	assert.Equal(t, 60, span.Days)
}
