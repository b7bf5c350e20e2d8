package registry

import (
	"github.com/connerkup/ecometrics/internal/schema"
	"github.com/connerkup/ecometrics/pkg/models"
)

// Industry defaults seeded into a new company's configuration. Industries
// absent from these tables fall back to the generic entries.

var genericProducts = []string{"Product A", "Product B", "Product C"}

var industryProducts = map[string][]string{
	"Packaging": {"Plastic Containers", "Paper Packaging", "Glass Bottles",
		"Aluminum Cans", "Biodegradable Packaging"},
	"Manufacturing":   {"Electronics", "Automotive", "Machinery", "Textiles"},
	"Retail":          {"Apparel", "Electronics", "Home Goods", "Food"},
	"Food & Beverage": {"Beverages", "Snacks", "Dairy", "Frozen Foods"},
	"Pharmaceutical":  {"Prescription Drugs", "Over-the-Counter", "Medical Devices"},
	"Technology":      {"Software", "Hardware", "Services", "Cloud Solutions"},
}

// industryMappingOverrides replaces selected canonical→company column
// entries on top of the identity base, per category.
var industryMappingOverrides = map[string]map[models.Category]map[string]string{
	"Manufacturing": {
		models.CategorySales: {
			"product_line":     "product_category",
			"region":           "location",
			"customer_segment": "client_type",
		},
	},
	"Retail": {
		models.CategorySales: {
			"product_line":     "category",
			"region":           "store_location",
			"customer_segment": "customer_type",
		},
	},
}

var baseMetrics = models.MetricsConfig{
	Financial:   []string{"revenue", "profit_margin", "cost_of_goods"},
	ESG:         []string{"emissions", "energy_consumption", "recycled_content"},
	Operational: []string{"units_produced", "efficiency", "quality_score"},
}

var industryMetrics = map[string]models.MetricsConfig{
	"Manufacturing": {
		Financial:   []string{"revenue", "profit_margin", "production_cost"},
		ESG:         []string{"emissions", "energy_consumption", "waste_generation"},
		Operational: []string{"units_produced", "defect_rate", "efficiency"},
	},
	"Retail": {
		Financial:   []string{"sales", "profit_margin", "inventory_cost"},
		ESG:         []string{"emissions", "energy_consumption", "packaging_waste"},
		Operational: []string{"units_sold", "inventory_turnover", "customer_satisfaction"},
	},
}

// defaultProducts returns the default product taxonomy for an industry.
func defaultProducts(industry string) models.ProductConfig {
	if lines, ok := industryProducts[industry]; ok {
		return models.ProductConfig{ProductLines: append([]string(nil), lines...)}
	}
	return models.ProductConfig{ProductLines: append([]string(nil), genericProducts...)}
}

// defaultSchemaMapping returns the identity base mapping for every category
// with the industry's overrides applied.
func defaultSchemaMapping(industry string) models.SchemaMappingConfig {
	mappings := make(map[models.Category]map[string]string, len(models.Categories()))
	for _, cat := range models.Categories() {
		m := make(map[string]string)
		for _, name := range schema.CanonicalNames(cat) {
			m[name] = name
		}
		for canonical, companyCol := range industryMappingOverrides[industry][cat] {
			m[canonical] = companyCol
		}
		mappings[cat] = m
	}
	return models.SchemaMappingConfig{Mappings: mappings}
}

// defaultMetrics returns the default metric taxonomy for an industry.
func defaultMetrics(industry string) models.MetricsConfig {
	if m, ok := industryMetrics[industry]; ok {
		return m
	}
	return baseMetrics
}
