// Package validate checks uploaded datasets against the canonical column
// requirements, type expectations, and business-rule bounds for a data
// category. Validation is read-only and accumulates every violation rather
// than stopping at the first.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/connerkup/ecometrics/internal/schema"
	"github.com/connerkup/ecometrics/pkg/models"
)

// Result is the outcome of validating one dataset.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Plausible date window for uploaded rows.
var (
	minDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	maxDate = time.Date(2030, 12, 31, 0, 0, 0, 0, time.UTC)
)

var requiredColumns = map[models.Category][]string{
	models.CategorySales:       {"date", "product_line", "units_sold", "revenue"},
	models.CategoryESG:         {"date", "facility", "emissions_kg_co2", "energy_consumption_kwh"},
	models.CategorySupplyChain: {"date", "supplier", "order_quantity", "order_value"},
}

type expectedKind string

const (
	kindDatetime expectedKind = "datetime"
	kindNumeric  expectedKind = "numeric"
)

var typeChecks = map[models.Category]map[string]expectedKind{
	models.CategorySales: {
		"date":       kindDatetime,
		"units_sold": kindNumeric,
		"revenue":    kindNumeric,
	},
	models.CategoryESG: {
		"date":                   kindDatetime,
		"emissions_kg_co2":       kindNumeric,
		"energy_consumption_kwh": kindNumeric,
	},
	models.CategorySupplyChain: {
		"date":           kindDatetime,
		"order_quantity": kindNumeric,
		"order_value":    kindNumeric,
	},
}

var nonNegativeColumns = map[models.Category][]string{
	models.CategorySales:       {"units_sold", "revenue", "cost_of_goods"},
	models.CategoryESG:         {"emissions_kg_co2", "energy_consumption_kwh", "water_usage_liters"},
	models.CategorySupplyChain: {"order_quantity", "order_value"},
}

var percentageColumns = map[models.Category][]string{
	models.CategoryESG: {"recycled_material_pct", "renewable_energy_pct"},
}

// Dataset validates ds for a category under a company schema mapping. Each
// required canonical column resolves through the mapping, so companies whose
// uploads use their own column names validate against those names. Datasets
// already in canonical form (generated samples, re-uploads of exports) are
// accepted too: the canonical name applies whenever the mapped name is
// absent but the canonical one is present. Rules run in order: required
// columns, types, business rules; all violations are collected.
func Dataset(ds *models.Dataset, mapping map[string]string, category models.Category) Result {
	var errs []string

	col := func(canonical string) string {
		name := schema.ResolveColumn(mapping, canonical)
		if name != canonical && !ds.HasColumn(name) && ds.HasColumn(canonical) {
			return canonical
		}
		return name
	}

	// 1. Required columns.
	var missing []string
	for _, canonical := range requiredColumns[category] {
		if !ds.HasColumn(col(canonical)) {
			missing = append(missing, col(canonical))
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	// 2. Types.
	for _, canonical := range orderedKeys(category) {
		kind := typeChecks[category][canonical]
		name := col(canonical)
		if !ds.HasColumn(name) {
			continue
		}
		switch kind {
		case kindDatetime:
			if !allParseAsDates(ds.Column(name)) {
				errs = append(errs, fmt.Sprintf("column %s should be a valid date", name))
			}
		case kindNumeric:
			if !allNumeric(ds.Column(name)) {
				errs = append(errs, fmt.Sprintf("column %s should be numeric", name))
			}
		}
	}

	// 3. Business rules.
	for _, canonical := range nonNegativeColumns[category] {
		name := col(canonical)
		if !ds.HasColumn(name) {
			continue
		}
		if anyNegative(ds.Column(name)) {
			errs = append(errs, fmt.Sprintf("column %s contains negative values", name))
		}
	}

	dateCol := col("date")
	if ds.HasColumn(dateCol) {
		if out, bad := datesOutsideWindow(ds.Column(dateCol)); bad {
			errs = append(errs, "date column contains unparseable values")
		} else if out {
			errs = append(errs, fmt.Sprintf("dates are outside allowed range (%s to %s)",
				minDate.Format("2006-01-02"), maxDate.Format("2006-01-02")))
		}
	}

	for _, canonical := range percentageColumns[category] {
		name := col(canonical)
		if !ds.HasColumn(name) {
			continue
		}
		if anyOutsidePercent(ds.Column(name)) {
			errs = append(errs, fmt.Sprintf("column %s contains values outside 0-100 range", name))
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// orderedKeys returns the type-checked canonical columns for a category in
// canonical schema order, so error messages come out deterministically.
func orderedKeys(category models.Category) []string {
	checks := typeChecks[category]
	var keys []string
	for _, c := range schema.CanonicalColumns(category) {
		if _, ok := checks[c.Name]; ok {
			keys = append(keys, c.Name)
		}
	}
	return keys
}

func allParseAsDates(vals []any) bool {
	for _, v := range vals {
		if v == nil {
			continue
		}
		if _, ok := schema.ParseDate(v); !ok {
			return false
		}
	}
	return true
}

func allNumeric(vals []any) bool {
	for _, v := range vals {
		if v == nil {
			continue
		}
		if _, ok := schema.Numeric(v); !ok {
			return false
		}
	}
	return true
}

func anyNegative(vals []any) bool {
	for _, v := range vals {
		if n, ok := schema.Numeric(v); ok && n < 0 {
			return true
		}
	}
	return false
}

func anyOutsidePercent(vals []any) bool {
	for _, v := range vals {
		if n, ok := schema.Numeric(v); ok && (n < 0 || n > 100) {
			return true
		}
	}
	return false
}

// datesOutsideWindow reports (outside, unparseable). Boundary dates are
// accepted.
func datesOutsideWindow(vals []any) (bool, bool) {
	outside := false
	for _, v := range vals {
		if v == nil {
			continue
		}
		t, ok := schema.ParseDate(v)
		if !ok {
			return false, true
		}
		if t.Before(minDate) || t.After(maxDate.Add(24*time.Hour-time.Nanosecond)) {
			outside = true
		}
	}
	return outside, false
}
