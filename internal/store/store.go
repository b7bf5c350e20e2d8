package store

import (
	"context"
	"errors"

	"github.com/connerkup/ecometrics/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateCompany(ctx context.Context, c *models.Company) error
	ListCompanies(ctx context.Context) ([]*models.Company, error)
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	DeactivateCompany(ctx context.Context, id string) error

	GetConfig(ctx context.Context, companyID string, kind models.ConfigKind) (*models.ConfigEntry, error)
	UpsertConfig(ctx context.Context, entry *models.ConfigEntry) error

	UpsertDataSource(ctx context.Context, src *models.DataSource) error
	ListDataSources(ctx context.Context, companyID string) ([]*models.DataSource, error)

	// Catalog lookups. Existence is decided here, never by probing a query
	// and treating failure as absence.
	ListTables(ctx context.Context) ([]string, error)
	TableColumns(ctx context.Context, table string) ([]string, error)
	CountCompanyRows(ctx context.Context, table, companyID string) (int, error)

	// AppendDataset writes the canonical dataset into every named staging
	// table in a single transaction, creating tables that do not exist yet.
	AppendDataset(ctx context.Context, tables []string, category models.Category, ds *models.Dataset) (int64, error)
	// QueryDataset reads a table back as a dataset, filtered by company when
	// companyID is non-empty.
	QueryDataset(ctx context.Context, table, companyID string) (*models.Dataset, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}
