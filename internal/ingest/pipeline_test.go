package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connerkup/ecometrics/internal/cache"
	"github.com/connerkup/ecometrics/internal/cache/cachetest"
	"github.com/connerkup/ecometrics/internal/registry"
	"github.com/connerkup/ecometrics/internal/store/storetest"
	"github.com/connerkup/ecometrics/pkg/models"
)

func newTestPipeline(t *testing.T) (*Pipeline, *storetest.Store, *cachetest.Cache, *registry.Registry) {
	t.Helper()
	st := storetest.New()
	c := cachetest.New()
	reg := registry.New(st)
	return NewPipeline(reg, st, c), st, c, reg
}

// End-to-end: a Manufacturing company uploads sales data using its own
// column names; the pipeline validates it, normalizes it to canonical
// columns, and lands it in both staging tables.
func TestUpload_ManufacturingSalesEndToEnd(t *testing.T) {
	pipe, st, _, reg := newTestPipeline(t)
	ctx := context.Background()

	_, err := reg.CreateCompany(ctx, registry.CreateParams{
		ID: "acme", Name: "Acme Corp", Industry: "Manufacturing",
	})
	require.NoError(t, err)

	csv := "date,product_category,location,client_type,units_sold,revenue\n" +
		"2024-01-15,Electronics,EMEA,OEM,100,5000\n" +
		"2024-02-15,Automotive,APAC,Distributor,40,2100\n"

	res := pipe.Upload(ctx, "sales_q1.csv", strings.NewReader(csv), "acme", models.CategorySales)

	require.True(t, res.Succeeded(), "stage=%s message=%s errors=%v", res.Stage, res.Message, res.Errors)
	assert.Equal(t, StagePersisted, res.Stage)
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, []string{"stg_sales_data_acme", "stg_sales_data"}, res.Tables)

	for _, table := range res.Tables {
		ds := st.Table(table)
		require.NotNil(t, ds, "table %s should exist", table)
		require.Len(t, ds.Rows, 2)
		assert.Equal(t, "Electronics", ds.Rows[0]["product_line"])
		assert.Equal(t, "EMEA", ds.Rows[0]["region"])
		assert.Equal(t, "OEM", ds.Rows[0]["customer_segment"])
		assert.Equal(t, "acme", ds.Rows[0]["company_id"])
		assert.NotContains(t, ds.Rows[0], "product_category")
	}

	sources, err := st.ListDataSources(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "sales_q1.csv", sources[0].SourceName)
	assert.Equal(t, "stg_sales_data_acme", sources[0].TableName)
}

func TestUpload_ValidationFailureWritesNothing(t *testing.T) {
	pipe, st, _, _ := newTestPipeline(t)

	csv := "date,revenue\n2024-01-15,-100\n"

	res := pipe.Upload(context.Background(), "bad.csv", strings.NewReader(csv),
		"acme", models.CategorySales)

	assert.False(t, res.Succeeded())
	assert.Equal(t, StageFailed, res.Stage)
	assert.Equal(t, "validation failed", res.Message)
	assert.NotEmpty(t, res.Errors)
	assert.Nil(t, st.Table("stg_sales_data"))
	assert.Nil(t, st.Table("stg_sales_data_acme"))
}

func TestUpload_UnparseableFile(t *testing.T) {
	pipe, _, _, _ := newTestPipeline(t)

	res := pipe.Upload(context.Background(), "data.xyz", strings.NewReader("x"),
		"acme", models.CategorySales)

	assert.Equal(t, StageFailed, res.Stage)
	assert.Contains(t, res.Message, "failed to read file")
}

func TestUpload_InvalidatesReportCaches(t *testing.T) {
	pipe, _, c, _ := newTestPipeline(t)
	ctx := context.Background()

	// Pre-warm the caches an upload must invalidate.
	for _, key := range cache.ReportInvalidationKeys("acme", models.CategorySales) {
		require.NoError(t, c.Set(ctx, key, []byte("stale"), 0))
	}

	csv := "date,product_line,units_sold,revenue\n2024-01-15,Widgets,10,100\n"
	res := pipe.Upload(ctx, "sales.csv", strings.NewReader(csv), "acme", models.CategorySales)
	require.True(t, res.Succeeded(), "errors: %v", res.Errors)

	for _, key := range cache.ReportInvalidationKeys("acme", models.CategorySales) {
		assert.False(t, c.Has(key), "key %s should be invalidated", key)
	}
}

func TestIngestDataset_GeneratedSamplePassesValidation(t *testing.T) {
	pipe, st, _, reg := newTestPipeline(t)
	ctx := context.Background()

	_, err := reg.CreateCompany(ctx, registry.CreateParams{
		ID: "acme", Name: "Acme Corp", Industry: "Manufacturing",
	})
	require.NoError(t, err)

	for _, cat := range models.Categories() {
		ds := GenerateSample("acme", cat, 25, reg.ProductLines(ctx, "acme"))
		res := pipe.IngestDataset(ctx, ds, "acme", cat, "generated_sample")

		require.True(t, res.Succeeded(), "category %s: stage=%s errors=%v", cat, res.Stage, res.Errors)
		assert.Equal(t, 25, res.RowCount)
	}

	// Shared and company staging tables both received the rows.
	assert.Len(t, st.Table("stg_sales_data").Rows, 25)
	assert.Len(t, st.Table("stg_sales_data_acme").Rows, 25)

	// Sampled products come from the company's configured product lines.
	lines := reg.ProductLines(ctx, "acme")
	for _, row := range st.Table("stg_sales_data").Rows {
		assert.Contains(t, lines, row["product_line"])
	}
}
