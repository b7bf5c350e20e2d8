package ingest

import (
	"math/rand"
	"time"

	"github.com/connerkup/ecometrics/pkg/models"
)

var sampleRegions = []string{"North America", "Europe", "Asia Pacific"}
var sampleSegments = []string{"Retail", "Wholesale", "Food & Beverage"}
var sampleFacilities = []string{"Plant A", "Plant B", "Plant C"}
var sampleSuppliers = []string{"Supplier A", "Supplier B", "Supplier C", "Supplier D"}

// GenerateSample builds a demonstration dataset for a company and category
// using its configured product lines. Rows use canonical column names and
// values inside the validation bounds, so generated data always ingests
// cleanly.
func GenerateSample(companyID string, cat models.Category, rows int, productLines []string) *models.Dataset {
	if rows <= 0 {
		rows = 100
	}
	if len(productLines) == 0 {
		productLines = []string{"Product A", "Product B"}
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	switch cat {
	case models.CategorySales:
		return sampleSales(rng, companyID, rows, productLines)
	case models.CategoryESG:
		return sampleESG(rng, companyID, rows, productLines)
	case models.CategorySupplyChain:
		return sampleSupplyChain(rng, companyID, rows)
	}
	return &models.Dataset{}
}

func sampleSales(rng *rand.Rand, companyID string, rows int, productLines []string) *models.Dataset {
	ds := &models.Dataset{Columns: []string{
		"date", "product_line", "region", "customer_segment",
		"units_sold", "revenue", "cost_of_goods", models.CompanyIDColumn,
	}}
	for i := 0; i < rows; i++ {
		ds.Rows = append(ds.Rows, map[string]any{
			"date":                 sampleDate(rng),
			"product_line":         pick(rng, productLines),
			"region":               pick(rng, sampleRegions),
			"customer_segment":     pick(rng, sampleSegments),
			"units_sold":           float64(10 + rng.Intn(990)),
			"revenue":              100 + rng.Float64()*9900,
			"cost_of_goods":        50 + rng.Float64()*4950,
			models.CompanyIDColumn: companyID,
		})
	}
	return ds
}

func sampleESG(rng *rand.Rand, companyID string, rows int, productLines []string) *models.Dataset {
	ds := &models.Dataset{Columns: []string{
		"date", "product_line", "facility", "emissions_kg_co2",
		"energy_consumption_kwh", "water_usage_liters",
		"recycled_material_pct", models.CompanyIDColumn,
	}}
	for i := 0; i < rows; i++ {
		ds.Rows = append(ds.Rows, map[string]any{
			"date":                   sampleDate(rng),
			"product_line":           pick(rng, productLines),
			"facility":               pick(rng, sampleFacilities),
			"emissions_kg_co2":       10 + rng.Float64()*490,
			"energy_consumption_kwh": 100 + rng.Float64()*1900,
			"water_usage_liters":     50 + rng.Float64()*950,
			"recycled_material_pct":  20 + rng.Float64()*60,
			models.CompanyIDColumn:   companyID,
		})
	}
	return ds
}

func sampleSupplyChain(rng *rand.Rand, companyID string, rows int) *models.Dataset {
	ds := &models.Dataset{Columns: []string{
		"date", "supplier", "order_quantity", "order_value",
		"on_time_delivery", models.CompanyIDColumn,
	}}
	for i := 0; i < rows; i++ {
		ds.Rows = append(ds.Rows, map[string]any{
			"date":                 sampleDate(rng),
			"supplier":             pick(rng, sampleSuppliers),
			"order_quantity":       float64(100 + rng.Intn(4900)),
			"order_value":          1000 + rng.Float64()*49000,
			"on_time_delivery":     rng.Float64() < 0.8,
			models.CompanyIDColumn: companyID,
		})
	}
	return ds
}

func sampleDate(rng *rand.Rand) string {
	day := rng.Intn(365)
	return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, day).Format("2006-01-02")
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}
