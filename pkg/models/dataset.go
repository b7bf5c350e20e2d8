package models

import "fmt"

// Category enumerates the data categories the canonical schema covers.
type Category string

const (
	CategorySales       Category = "sales"
	CategoryESG         Category = "esg"
	CategorySupplyChain Category = "supply_chain"
)

// Categories lists all known categories in a stable order.
func Categories() []Category {
	return []Category{CategorySales, CategoryESG, CategorySupplyChain}
}

// ParseCategory validates a category received at the API boundary.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategorySales, CategoryESG, CategorySupplyChain:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown data category %q", s)
}

// CompanyIDColumn is the column appended to every canonical dataset.
const CompanyIDColumn = "company_id"

// Dataset is an in-memory table: an ordered header plus rows keyed by column
// name. Cell values are string, float64, bool, or nil as produced by the
// upload parsers.
type Dataset struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// HasColumn reports whether the dataset header contains name.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns every value in the named column, one per row. Rows missing
// the key contribute nil.
func (d *Dataset) Column(name string) []any {
	vals := make([]any, len(d.Rows))
	for i, row := range d.Rows {
		vals[i] = row[name]
	}
	return vals
}

// Clone returns a deep copy of the dataset. Mapper and pipeline stages
// operate on copies so callers never observe mutation.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]map[string]any, len(d.Rows)),
	}
	for i, row := range d.Rows {
		r := make(map[string]any, len(row))
		for k, v := range row {
			r[k] = v
		}
		out.Rows[i] = r
	}
	return out
}
