// Package reporting serves the read side of the dashboard: category data
// with fact-table → staging-table fallback, per-company summary statistics,
// and descriptive insights. Reads go through an explicit cache that the
// upload pipeline invalidates after every write.
package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/connerkup/ecometrics/internal/cache"
	"github.com/connerkup/ecometrics/internal/schema"
	"github.com/connerkup/ecometrics/internal/store"
	"github.com/connerkup/ecometrics/pkg/models"
)

// Service loads reporting data from the canonical store.
type Service struct {
	store store.Store
	cache cache.Cache
	ttl   time.Duration
}

// New creates a reporting Service. ttl bounds cache staleness; writes also
// invalidate explicitly.
func New(s store.Store, c cache.Cache, ttl time.Duration) *Service {
	return &Service{store: s, cache: c, ttl: ttl}
}

// CategoryReport is one category's data for a company plus where it came
// from and what the numbers are doing.
type CategoryReport struct {
	CompanyID string          `json:"company_id"`
	Category  models.Category `json:"category"`
	Source    string          `json:"source"`
	Dataset   *models.Dataset `json:"dataset"`
	Insight   *Insight        `json:"insight,omitempty"`
}

// Insight summarizes the category's primary metric.
type Insight struct {
	Metric     string  `json:"metric"`
	Mean       float64 `json:"mean"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Volatility float64 `json:"volatility_pct"`
	Trend      Trend   `json:"trend"`
}

// primaryMetric is the headline column per category.
var primaryMetric = map[models.Category]string{
	models.CategorySales:       "revenue",
	models.CategoryESG:         "emissions_kg_co2",
	models.CategorySupplyChain: "order_value",
}

// LoadCategoryData returns a company's data for one category. Lookup order:
// the monthly fact table filtered by company, the shared staging table
// filtered by company, then the unfiltered fact table for continuity with
// pre-tenant data. Table existence comes from the catalog, not from probing
// queries.
func (s *Service) LoadCategoryData(ctx context.Context, companyID string, cat models.Category) (*CategoryReport, error) {
	key := cache.ReportKey(companyID, cat)
	if cached, ok := s.getCached(ctx, key); ok {
		var report CategoryReport
		if err := json.Unmarshal(cached, &report); err == nil {
			return &report, nil
		}
	}

	tables, err := s.store.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	exists := make(map[string]bool, len(tables))
	for _, t := range tables {
		exists[t] = true
	}

	report := &CategoryReport{CompanyID: companyID, Category: cat}
	fact := schema.FactTable(cat)
	staging := schema.StagingTable(cat)

	switch {
	case exists[fact] && s.hasCompanyRows(ctx, fact, companyID):
		report.Dataset, err = s.store.QueryDataset(ctx, fact, companyID)
		report.Source = fact
	case exists[staging] && s.hasCompanyRows(ctx, staging, companyID):
		report.Dataset, err = s.store.QueryDataset(ctx, staging, companyID)
		report.Source = staging
	case exists[fact]:
		report.Dataset, err = s.store.QueryDataset(ctx, fact, "")
		report.Source = fact + " (shared fallback)"
	default:
		report.Dataset = &models.Dataset{}
		report.Source = "none"
	}
	if err != nil {
		return nil, fmt.Errorf("load %s data for %s: %w", cat, companyID, err)
	}

	report.Insight = buildInsight(report.Dataset, primaryMetric[cat])

	s.setCached(ctx, key, report)
	return report, nil
}

// Summary aggregates a company's footprint across all categories.
type Summary struct {
	CompanyID    string                       `json:"company_id"`
	TotalRecords int                          `json:"total_records"`
	Records      map[models.Category]int      `json:"records"`
	DateRanges   map[models.Category]DateSpan `json:"date_ranges,omitempty"`
	KeyMetrics   map[string]float64           `json:"key_metrics,omitempty"`
}

// DateSpan is the inclusive date coverage of one category's data.
type DateSpan struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// CompanySummary computes record counts, date coverage, and headline totals
// for one company across every category.
func (s *Service) CompanySummary(ctx context.Context, companyID string) (*Summary, error) {
	key := cache.SummaryKey(companyID)
	if cached, ok := s.getCached(ctx, key); ok {
		var summary Summary
		if err := json.Unmarshal(cached, &summary); err == nil {
			return &summary, nil
		}
	}

	summary := &Summary{
		CompanyID:  companyID,
		Records:    make(map[models.Category]int),
		DateRanges: make(map[models.Category]DateSpan),
		KeyMetrics: make(map[string]float64),
	}

	for _, cat := range models.Categories() {
		report, err := s.LoadCategoryData(ctx, companyID, cat)
		if err != nil {
			return nil, err
		}
		n := len(report.Dataset.Rows)
		summary.Records[cat] = n
		summary.TotalRecords += n
		if span, ok := dateSpan(report.Dataset); ok {
			summary.DateRanges[cat] = span
		}
	}

	addTotal := func(name string, ds *models.Dataset, columns ...string) {
		for _, col := range columns {
			if !ds.HasColumn(col) {
				continue
			}
			var sum float64
			for _, v := range ds.Column(col) {
				if n, ok := schema.Numeric(v); ok {
					sum += n
				}
			}
			summary.KeyMetrics[name] = sum
			return
		}
	}

	sales, err := s.LoadCategoryData(ctx, companyID, models.CategorySales)
	if err == nil {
		addTotal("total_revenue", sales.Dataset, "total_revenue", "revenue")
	}
	esg, err := s.LoadCategoryData(ctx, companyID, models.CategoryESG)
	if err == nil {
		addTotal("total_emissions", esg.Dataset, "total_emissions_kg_co2", "emissions_kg_co2")
	}

	s.setCached(ctx, key, summary)
	return summary, nil
}

// hasCompanyRows reports whether table carries at least one row for the
// company. Tables without a company_id column count as non-matches.
func (s *Service) hasCompanyRows(ctx context.Context, table, companyID string) bool {
	cols, err := s.store.TableColumns(ctx, table)
	if err != nil {
		slog.Warn("table columns lookup failed", "table", table, "error", err)
		return false
	}
	found := false
	for _, c := range cols {
		if c == models.CompanyIDColumn {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	count, err := s.store.CountCompanyRows(ctx, table, companyID)
	if err != nil {
		slog.Warn("company row count failed", "table", table, "error", err)
		return false
	}
	return count > 0
}

func buildInsight(ds *models.Dataset, metric string) *Insight {
	if metric == "" || !ds.HasColumn(metric) {
		return nil
	}
	var vals []float64
	// Rows come back newest-first; reverse into chronological order for the
	// trend windows.
	for i := len(ds.Rows) - 1; i >= 0; i-- {
		if n, ok := schema.Numeric(ds.Rows[i][metric]); ok {
			vals = append(vals, n)
		}
	}
	if len(vals) == 0 {
		return nil
	}

	ins := &Insight{
		Metric:     metric,
		Mean:       Mean(vals),
		Min:        vals[0],
		Max:        vals[0],
		Volatility: Volatility(vals),
		Trend:      WindowTrend(vals),
	}
	for _, v := range vals {
		if v < ins.Min {
			ins.Min = v
		}
		if v > ins.Max {
			ins.Max = v
		}
	}
	return ins
}

func dateSpan(ds *models.Dataset) (DateSpan, bool) {
	if !ds.HasColumn("date") {
		return DateSpan{}, false
	}
	var min, max time.Time
	for _, v := range ds.Column("date") {
		t, ok := schema.ParseDate(v)
		if !ok {
			continue
		}
		if min.IsZero() || t.Before(min) {
			min = t
		}
		if max.IsZero() || t.After(max) {
			max = t
		}
	}
	if min.IsZero() {
		return DateSpan{}, false
	}
	return DateSpan{
		Start: min.Format("2006-01-02"),
		End:   max.Format("2006-01-02"),
		Days:  int(max.Sub(min).Hours() / 24),
	}, true
}

func (s *Service) getCached(ctx context.Context, key string) ([]byte, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("report cache read failed", "key", key, "error", err)
		return nil, false
	}
	return data, ok
}

func (s *Service) setCached(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.Warn("report cache write failed", "key", key, "error", err)
	}
}
