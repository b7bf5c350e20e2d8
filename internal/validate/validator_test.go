package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connerkup/ecometrics/pkg/models"
)

func validSalesDataset() *models.Dataset {
	return &models.Dataset{
		Columns: []string{"date", "product_line", "units_sold", "revenue"},
		Rows: []map[string]any{
			{"date": "2024-01-15", "product_line": "Electronics", "units_sold": 100.0, "revenue": 5000.0},
			{"date": "2024-02-15", "product_line": "Machinery", "units_sold": 40.0, "revenue": 2100.0},
		},
	}
}

func TestDataset_ValidSalesPasses(t *testing.T) {
	res := Dataset(validSalesDataset(), nil, models.CategorySales)

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestDataset_MissingRequiredColumns(t *testing.T) {
	ds := &models.Dataset{
		Columns: []string{"date", "revenue"},
		Rows:    []map[string]any{{"date": "2024-01-15", "revenue": 10.0}},
	}

	res := Dataset(ds, nil, models.CategorySales)

	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "missing required columns: product_line, units_sold", res.Errors[0])
}

func TestDataset_MissingColumnsReportedUnderMappedNames(t *testing.T) {
	mapping := map[string]string{"product_line": "product_category"}
	ds := &models.Dataset{
		Columns: []string{"date", "units_sold", "revenue"},
		Rows:    []map[string]any{{"date": "2024-01-15", "units_sold": 1.0, "revenue": 10.0}},
	}

	res := Dataset(ds, mapping, models.CategorySales)

	require.False(t, res.Valid)
	assert.Equal(t, "missing required columns: product_category", res.Errors[0])
}

func TestDataset_MappedColumnsValidate(t *testing.T) {
	// A company whose uploads use its own column names validates against
	// those names, not the canonical ones.
	mapping := map[string]string{
		"product_line":     "product_category",
		"region":           "location",
		"customer_segment": "client_type",
	}
	ds := &models.Dataset{
		Columns: []string{"date", "product_category", "location", "units_sold", "revenue"},
		Rows: []map[string]any{
			{"date": "2024-01-15", "product_category": "Automotive", "location": "EMEA",
				"units_sold": 25.0, "revenue": 1250.0},
		},
	}

	res := Dataset(ds, mapping, models.CategorySales)

	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestDataset_CanonicalColumnsAcceptedDespiteMapping(t *testing.T) {
	// Generated samples and re-uploaded exports carry canonical names even
	// when the company maps its own.
	mapping := map[string]string{"product_line": "product_category"}

	res := Dataset(validSalesDataset(), mapping, models.CategorySales)

	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestDataset_NonNumericColumn(t *testing.T) {
	ds := validSalesDataset()
	ds.Rows[1]["revenue"] = "a lot"

	res := Dataset(ds, nil, models.CategorySales)

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "column revenue should be numeric")
}

func TestDataset_NegativeValues(t *testing.T) {
	ds := validSalesDataset()
	ds.Rows[0]["revenue"] = -5.0

	res := Dataset(ds, nil, models.CategorySales)

	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "column revenue contains negative values", res.Errors[0])
}

func TestDataset_DateWindow(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		valid bool
	}{
		{"lower boundary accepted", "2020-01-01", true},
		{"upper boundary accepted", "2030-12-31", true},
		{"before window", "2019-12-31", false},
		{"after window", "2031-01-01", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := validSalesDataset()
			ds.Rows[0]["date"] = tt.date

			res := Dataset(ds, nil, models.CategorySales)

			if tt.valid {
				assert.True(t, res.Valid, "errors: %v", res.Errors)
			} else {
				require.False(t, res.Valid)
				assert.Contains(t, res.Errors,
					"dates are outside allowed range (2020-01-01 to 2030-12-31)")
			}
		})
	}
}

func TestDataset_UnparseableDates(t *testing.T) {
	ds := validSalesDataset()
	ds.Rows[0]["date"] = "not-a-date"

	res := Dataset(ds, nil, models.CategorySales)

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "column date should be a valid date")
	assert.Contains(t, res.Errors, "date column contains unparseable values")
}

func TestDataset_PercentageOutOfRange(t *testing.T) {
	ds := &models.Dataset{
		Columns: []string{"date", "facility", "emissions_kg_co2", "energy_consumption_kwh", "recycled_material_pct"},
		Rows: []map[string]any{
			{"date": "2024-01-15", "facility": "Plant A", "emissions_kg_co2": 12.0,
				"energy_consumption_kwh": 300.0, "recycled_material_pct": 130.0},
		},
	}

	res := Dataset(ds, nil, models.CategoryESG)

	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "column recycled_material_pct contains values outside 0-100 range")
}

func TestDataset_AccumulatesAllViolations(t *testing.T) {
	ds := &models.Dataset{
		Columns: []string{"date", "units_sold", "revenue"},
		Rows: []map[string]any{
			{"date": "2019-01-01", "units_sold": "many", "revenue": -1.0},
		},
	}

	res := Dataset(ds, nil, models.CategorySales)

	require.False(t, res.Valid)
	assert.Equal(t, []string{
		"missing required columns: product_line",
		"column units_sold should be numeric",
		"column revenue contains negative values",
		"dates are outside allowed range (2020-01-01 to 2030-12-31)",
	}, res.Errors)
}

func TestDataset_NilCellsAreIgnored(t *testing.T) {
	ds := validSalesDataset()
	ds.Rows[0]["units_sold"] = nil

	res := Dataset(ds, nil, models.CategorySales)

	assert.True(t, res.Valid, "errors: %v", res.Errors)
}
