// Package schema defines the canonical column schema shared by all
// companies and the pure mapping from company-specific column names onto it.
package schema

import (
	"fmt"

	"github.com/connerkup/ecometrics/pkg/models"
)

// ColumnType is the storage type a canonical column carries.
type ColumnType string

const (
	TypeDate    ColumnType = "date"
	TypeNumeric ColumnType = "numeric"
	TypeText    ColumnType = "text"
	TypeBool    ColumnType = "boolean"
)

// Column describes one canonical column.
type Column struct {
	Name string
	Type ColumnType
}

// canonicalColumns is the closed canonical set per category. Order matters:
// it is the column order of the staging tables.
var canonicalColumns = map[models.Category][]Column{
	models.CategorySales: {
		{Name: "date", Type: TypeDate},
		{Name: "product_line", Type: TypeText},
		{Name: "region", Type: TypeText},
		{Name: "customer_segment", Type: TypeText},
		{Name: "units_sold", Type: TypeNumeric},
		{Name: "revenue", Type: TypeNumeric},
		{Name: "cost_of_goods", Type: TypeNumeric},
	},
	models.CategoryESG: {
		{Name: "date", Type: TypeDate},
		{Name: "product_line", Type: TypeText},
		{Name: "facility", Type: TypeText},
		{Name: "emissions_kg_co2", Type: TypeNumeric},
		{Name: "energy_consumption_kwh", Type: TypeNumeric},
		{Name: "water_usage_liters", Type: TypeNumeric},
		{Name: "recycled_material_pct", Type: TypeNumeric},
		{Name: "renewable_energy_pct", Type: TypeNumeric},
	},
	models.CategorySupplyChain: {
		{Name: "date", Type: TypeDate},
		{Name: "supplier", Type: TypeText},
		{Name: "order_quantity", Type: TypeNumeric},
		{Name: "order_value", Type: TypeNumeric},
		{Name: "on_time_delivery", Type: TypeBool},
	},
}

// CanonicalColumns returns the canonical column set for a category.
func CanonicalColumns(cat models.Category) []Column {
	return canonicalColumns[cat]
}

// CanonicalNames returns just the canonical column names for a category.
func CanonicalNames(cat models.Category) []string {
	cols := canonicalColumns[cat]
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// StagingTable returns the shared staging table name for a category.
func StagingTable(cat models.Category) string {
	return fmt.Sprintf("stg_%s_data", cat)
}

// CompanyStagingTable returns the company-scoped staging table name.
// Company identifiers are restricted to [A-Za-z0-9_-] at the API boundary,
// so the result is a safe SQL identifier.
func CompanyStagingTable(cat models.Category, companyID string) string {
	return fmt.Sprintf("stg_%s_data_%s", cat, companyID)
}

// FactTable returns the monthly fact table name for a category. These tables
// are built by the external batch transformation job, not by this service.
func FactTable(cat models.Category) string {
	return fmt.Sprintf("fact_%s_monthly", cat)
}
