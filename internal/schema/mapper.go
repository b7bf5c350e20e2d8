package schema

import "github.com/connerkup/ecometrics/pkg/models"

// Apply normalizes a raw dataset to the canonical schema. For each canonical
// column whose mapped company-specific name is present in the dataset and
// differs from the canonical name, the column is renamed; all other columns
// pass through untouched. A company_id column is appended if not already
// present. The input dataset is not mutated.
//
// An empty or nil mapping degrades to identity: output columns equal input
// columns plus company_id.
func Apply(ds *models.Dataset, mapping map[string]string, companyID string) *models.Dataset {
	out := ds.Clone()

	for canonical, companyCol := range mapping {
		if canonical == companyCol || companyCol == "" {
			continue
		}
		if !out.HasColumn(companyCol) {
			continue
		}
		renameColumn(out, companyCol, canonical)
	}

	if !out.HasColumn(models.CompanyIDColumn) {
		out.Columns = append(out.Columns, models.CompanyIDColumn)
		for _, row := range out.Rows {
			row[models.CompanyIDColumn] = companyID
		}
	}

	return out
}

// ResolveColumn returns the effective dataset column name for a canonical
// column under a mapping: the mapped company-specific name when one exists,
// otherwise the canonical name itself.
func ResolveColumn(mapping map[string]string, canonical string) string {
	if mapped, ok := mapping[canonical]; ok && mapped != "" {
		return mapped
	}
	return canonical
}

func renameColumn(ds *models.Dataset, from, to string) {
	for i, c := range ds.Columns {
		if c == from {
			ds.Columns[i] = to
		}
	}
	for _, row := range ds.Rows {
		if v, ok := row[from]; ok {
			delete(row, from)
			row[to] = v
		}
	}
}
