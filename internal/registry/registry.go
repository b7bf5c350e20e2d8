// Package registry manages the company lifecycle and per-company
// configuration: creating companies seeded with industry defaults, reading
// and replacing config entries, and resolving schema mappings for the
// mapper and validator.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/connerkup/ecometrics/internal/schema"
	"github.com/connerkup/ecometrics/internal/store"
	"github.com/connerkup/ecometrics/pkg/models"
)

// Registry provides company CRUD and config access over the store.
type Registry struct {
	store store.Store
}

// New creates a Registry.
func New(s store.Store) *Registry {
	return &Registry{store: s}
}

// CreateParams holds the caller-supplied fields for a new company.
type CreateParams struct {
	ID          string
	Name        string
	Industry    string
	Description string
	Settings    []byte
}

// CreateCompany inserts the company record and seeds its products, schema,
// and metrics configs from the industry defaults. A duplicate identifier
// surfaces as store.ErrDuplicateKey.
func (r *Registry) CreateCompany(ctx context.Context, p CreateParams) (*models.Company, error) {
	company := &models.Company{
		ID:          p.ID,
		Name:        p.Name,
		Industry:    p.Industry,
		Description: p.Description,
		Settings:    p.Settings,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.store.CreateCompany(ctx, company); err != nil {
		return nil, err
	}

	seeds := []models.CompanyConfig{
		defaultProducts(p.Industry),
		defaultSchemaMapping(p.Industry),
		defaultMetrics(p.Industry),
	}
	for _, cfg := range seeds {
		if err := r.SetConfig(ctx, p.ID, cfg.Kind(), cfg); err != nil {
			return nil, fmt.Errorf("seed %s config: %w", cfg.Kind(), err)
		}
	}

	slog.Info("company created", "company_id", p.ID, "industry", p.Industry)
	return company, nil
}

// ListCompanies returns all active companies ordered by name.
func (r *Registry) ListCompanies(ctx context.Context) ([]*models.Company, error) {
	return r.store.ListCompanies(ctx)
}

// GetCompany returns one company by id.
func (r *Registry) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	return r.store.GetCompany(ctx, id)
}

// DeactivateCompany soft-deletes a company. Its identifier stays reserved
// and its data remains in the staging tables.
func (r *Registry) DeactivateCompany(ctx context.Context, id string) error {
	return r.store.DeactivateCompany(ctx, id)
}

// GetConfig returns the typed config for (company, kind), or
// store.ErrNotFound when none has been written.
func (r *Registry) GetConfig(ctx context.Context, companyID string, kind models.ConfigKind) (models.CompanyConfig, error) {
	entry, err := r.store.GetConfig(ctx, companyID, kind)
	if err != nil {
		return nil, err
	}
	return models.UnmarshalConfig(kind, entry.Data)
}

// SetConfig replaces the config for (company, kind) wholesale.
func (r *Registry) SetConfig(ctx context.Context, companyID string, kind models.ConfigKind, cfg models.CompanyConfig) error {
	data, err := models.MarshalConfig(cfg)
	if err != nil {
		return err
	}
	return r.store.UpsertConfig(ctx, &models.ConfigEntry{
		CompanyID: companyID,
		Kind:      kind,
		Data:      data,
	})
}

// SchemaMapping returns the canonical→company column mapping for a category.
// A missing or malformed schema config degrades to the empty (identity)
// mapping rather than failing.
func (r *Registry) SchemaMapping(ctx context.Context, companyID string, cat models.Category) map[string]string {
	cfg, err := r.GetConfig(ctx, companyID, models.ConfigSchema)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("schema config unavailable, using identity mapping",
				"company_id", companyID, "error", err)
		}
		return map[string]string{}
	}
	mapping, ok := cfg.(models.SchemaMappingConfig)
	if !ok {
		return map[string]string{}
	}
	return mapping.Mapping(cat)
}

// ProductLines returns the company's configured product taxonomy, degrading
// to the generic default when unset.
func (r *Registry) ProductLines(ctx context.Context, companyID string) []string {
	cfg, err := r.GetConfig(ctx, companyID, models.ConfigProducts)
	if err == nil {
		if products, ok := cfg.(models.ProductConfig); ok && len(products.ProductLines) > 0 {
			return products.ProductLines
		}
	}
	return append([]string(nil), genericProducts...)
}

// MapToCanonical normalizes a raw dataset for (company, category): columns
// named per the company's mapping are renamed to canonical names and a
// company_id column is appended. A missing mapping degrades to identity
// pass-through; this operation never fails.
func (r *Registry) MapToCanonical(ctx context.Context, ds *models.Dataset, companyID string, cat models.Category) *models.Dataset {
	mapping := r.SchemaMapping(ctx, companyID, cat)
	return schema.Apply(ds, mapping, companyID)
}

// ListCompanyTables returns the canonical-store tables holding at least one
// row for the company. Tables without a company_id column are skipped.
func (r *Registry) ListCompanyTables(ctx context.Context, companyID string) ([]string, error) {
	tables, err := r.store.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	var matched []string
	for _, table := range tables {
		cols, err := r.store.TableColumns(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("columns of %s: %w", table, err)
		}
		if !contains(cols, models.CompanyIDColumn) {
			continue
		}
		count, err := r.store.CountCompanyRows(ctx, table, companyID)
		if err != nil {
			return nil, fmt.Errorf("count rows of %s: %w", table, err)
		}
		if count > 0 {
			matched = append(matched, table)
		}
	}
	return matched, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
