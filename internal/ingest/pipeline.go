// Package ingest implements the upload pipeline: parse a raw file, validate
// it against the company's schema, normalize it to canonical columns, and
// persist it into the staging tables.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/connerkup/ecometrics/internal/cache"
	"github.com/connerkup/ecometrics/internal/registry"
	"github.com/connerkup/ecometrics/internal/schema"
	"github.com/connerkup/ecometrics/internal/store"
	"github.com/connerkup/ecometrics/internal/validate"
	"github.com/connerkup/ecometrics/pkg/models"
	"github.com/google/uuid"
)

// Upload stages. Every upload moves received → parsed → validated → mapped →
// persisted, or terminates early in failed. There is no retry; the caller
// resubmits.
const (
	StageReceived  = "received"
	StageParsed    = "parsed"
	StageValidated = "validated"
	StageMapped    = "mapped"
	StagePersisted = "persisted"
	StageFailed    = "failed"
)

// UploadResult reports the outcome of one upload event.
type UploadResult struct {
	ID        uuid.UUID       `json:"upload_id"`
	CompanyID string          `json:"company_id"`
	Category  models.Category `json:"category"`
	Stage     string          `json:"stage"`
	RowCount  int             `json:"row_count"`
	Errors    []string        `json:"errors,omitempty"`
	Message   string          `json:"message"`
	Tables    []string        `json:"tables,omitempty"`
}

// Succeeded reports whether the upload reached the persisted stage.
func (r *UploadResult) Succeeded() bool { return r.Stage == StagePersisted }

// Pipeline orchestrates uploads. All failures come back inside the
// UploadResult; the pipeline itself never returns an error to the caller.
type Pipeline struct {
	registry *registry.Registry
	store    store.Store
	cache    cache.Cache
}

// NewPipeline creates a Pipeline.
func NewPipeline(reg *registry.Registry, st store.Store, c cache.Cache) *Pipeline {
	return &Pipeline{registry: reg, store: st, cache: c}
}

// Upload runs the full pipeline for one uploaded file.
func (p *Pipeline) Upload(ctx context.Context, filename string, r io.Reader, companyID string, cat models.Category) *UploadResult {
	res := &UploadResult{
		ID:        uuid.New(),
		CompanyID: companyID,
		Category:  cat,
		Stage:     StageReceived,
	}

	ds, err := ParseFile(filename, r)
	if err != nil {
		return p.fail(res, fmt.Sprintf("failed to read file: %v", err), nil)
	}
	res.Stage = StageParsed

	return p.ingest(ctx, res, ds, filename)
}

// IngestDataset runs the pipeline from the validation stage for an
// already-parsed dataset, e.g. generated sample data.
func (p *Pipeline) IngestDataset(ctx context.Context, ds *models.Dataset, companyID string, cat models.Category, sourceName string) *UploadResult {
	res := &UploadResult{
		ID:        uuid.New(),
		CompanyID: companyID,
		Category:  cat,
		Stage:     StageParsed,
	}
	return p.ingest(ctx, res, ds, sourceName)
}

func (p *Pipeline) ingest(ctx context.Context, res *UploadResult, ds *models.Dataset, sourceName string) *UploadResult {
	mapping := p.registry.SchemaMapping(ctx, res.CompanyID, res.Category)

	vr := validate.Dataset(ds, mapping, res.Category)
	if !vr.Valid {
		return p.fail(res, "validation failed", vr.Errors)
	}
	res.Stage = StageValidated

	canonical := schema.Apply(ds, mapping, res.CompanyID)
	res.Stage = StageMapped

	tables := []string{
		schema.CompanyStagingTable(res.Category, res.CompanyID),
		schema.StagingTable(res.Category),
	}
	written, err := p.store.AppendDataset(ctx, tables, res.Category, canonical)
	if err != nil {
		slog.Error("persist upload failed",
			"company_id", res.CompanyID, "category", res.Category, "error", err)
		return p.fail(res, "failed to save data to database", nil)
	}
	res.Stage = StagePersisted
	res.RowCount = int(written)
	res.Tables = tables
	res.Message = fmt.Sprintf("successfully uploaded %d rows for %s", written, res.CompanyID)

	// Bookkeeping and cache invalidation are best-effort: the rows are
	// already committed.
	if err := p.store.UpsertDataSource(ctx, &models.DataSource{
		CompanyID:  res.CompanyID,
		DataType:   res.Category,
		SourceName: sourceName,
		TableName:  tables[0],
	}); err != nil {
		slog.Warn("record data source failed", "company_id", res.CompanyID, "error", err)
	}

	keys := cache.ReportInvalidationKeys(res.CompanyID, res.Category)
	if err := p.cache.Delete(ctx, keys...); err != nil {
		slog.Warn("report cache invalidation failed", "company_id", res.CompanyID, "error", err)
	}

	return res
}

func (p *Pipeline) fail(res *UploadResult, message string, errs []string) *UploadResult {
	res.Stage = StageFailed
	res.Message = message
	res.Errors = errs
	slog.Info("upload failed",
		"upload_id", res.ID, "company_id", res.CompanyID,
		"category", res.Category, "reason", message)
	return res
}
