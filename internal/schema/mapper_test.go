package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/connerkup/ecometrics/pkg/models"
)

func TestApply_RenamesMappedColumns(t *testing.T) {
	ds := &models.Dataset{
		Columns: []string{"date", "product_category", "location", "units_sold", "revenue"},
		Rows: []map[string]any{
			{"date": "2024-01-15", "product_category": "Electronics", "location": "EMEA",
				"units_sold": 10.0, "revenue": 1000.0},
		},
	}
	mapping := map[string]string{
		"product_line": "product_category",
		"region":       "location",
	}

	out := Apply(ds, mapping, "acme")

	assert.Equal(t,
		[]string{"date", "product_line", "region", "units_sold", "revenue", "company_id"},
		out.Columns)
	assert.Equal(t, "Electronics", out.Rows[0]["product_line"])
	assert.Equal(t, "EMEA", out.Rows[0]["region"])
	assert.Equal(t, "acme", out.Rows[0]["company_id"])
	assert.NotContains(t, out.Rows[0], "product_category")
}

func TestApply_EmptyMappingIsIdentityPlusCompanyID(t *testing.T) {
	ds := &models.Dataset{
		Columns: []string{"date", "revenue"},
		Rows:    []map[string]any{{"date": "2024-01-15", "revenue": 50.0}},
	}

	out := Apply(ds, nil, "acme")

	assert.Equal(t, []string{"date", "revenue", "company_id"}, out.Columns)
	assert.Equal(t, "acme", out.Rows[0]["company_id"])
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	ds := &models.Dataset{
		Columns: []string{"product_category"},
		Rows:    []map[string]any{{"product_category": "Textiles"}},
	}

	Apply(ds, map[string]string{"product_line": "product_category"}, "acme")

	assert.Equal(t, []string{"product_category"}, ds.Columns)
	assert.Equal(t, "Textiles", ds.Rows[0]["product_category"])
	assert.NotContains(t, ds.Rows[0], "company_id")
}

func TestApply_IsIdempotent(t *testing.T) {
	ds := &models.Dataset{
		Columns: []string{"date", "product_category"},
		Rows:    []map[string]any{{"date": "2024-01-15", "product_category": "Machinery"}},
	}
	mapping := map[string]string{"product_line": "product_category"}

	once := Apply(ds, mapping, "acme")
	twice := Apply(once, mapping, "acme")

	assert.Equal(t, once.Columns, twice.Columns)
	assert.Equal(t, once.Rows, twice.Rows)
}

func TestApply_ExistingCompanyIDColumnKept(t *testing.T) {
	ds := &models.Dataset{
		Columns: []string{"date", "company_id"},
		Rows:    []map[string]any{{"date": "2024-01-15", "company_id": "other"}},
	}

	out := Apply(ds, nil, "acme")

	assert.Equal(t, []string{"date", "company_id"}, out.Columns)
	assert.Equal(t, "other", out.Rows[0]["company_id"])
}

func TestResolveColumn(t *testing.T) {
	mapping := map[string]string{"product_line": "product_category", "region": ""}

	assert.Equal(t, "product_category", ResolveColumn(mapping, "product_line"))
	assert.Equal(t, "region", ResolveColumn(mapping, "region"))
	assert.Equal(t, "date", ResolveColumn(mapping, "date"))
	assert.Equal(t, "date", ResolveColumn(nil, "date"))
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "stg_sales_data", StagingTable(models.CategorySales))
	assert.Equal(t, "stg_esg_data_acme", CompanyStagingTable(models.CategoryESG, "acme"))
	assert.Equal(t, "fact_supply_chain_monthly", FactTable(models.CategorySupplyChain))
}
