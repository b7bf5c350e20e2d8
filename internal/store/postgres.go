package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/connerkup/ecometrics/internal/schema"
	"github.com/connerkup/ecometrics/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Companies ---

func (s *PostgresStore) CreateCompany(ctx context.Context, c *models.Company) error {
	settings := c.Settings
	if len(settings) == 0 {
		settings = []byte("{}")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO companies (company_id, company_name, industry, description, settings, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, TRUE, $6)`,
		c.ID, c.Name, c.Industry, c.Description, settings, c.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]*models.Company, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT company_id, company_name, industry, description, settings, is_active, created_at
		 FROM companies WHERE is_active = TRUE ORDER BY company_name`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Industry, &c.Description,
			&c.Settings, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, &c)
	}
	return companies, rows.Err()
}

func (s *PostgresStore) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	var c models.Company
	err := s.pool.QueryRow(ctx,
		`SELECT company_id, company_name, industry, description, settings, is_active, created_at
		 FROM companies WHERE company_id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Industry, &c.Description, &c.Settings, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) DeactivateCompany(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET is_active = FALSE WHERE company_id = $1 AND is_active = TRUE`, id)
	if err != nil {
		return fmt.Errorf("deactivate company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Configs ---

func (s *PostgresStore) GetConfig(ctx context.Context, companyID string, kind models.ConfigKind) (*models.ConfigEntry, error) {
	var e models.ConfigEntry
	err := s.pool.QueryRow(ctx,
		`SELECT company_id, config_type, config_data, updated_at
		 FROM company_configs WHERE company_id = $1 AND config_type = $2`,
		companyID, string(kind),
	).Scan(&e.CompanyID, &e.Kind, &e.Data, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get config: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) UpsertConfig(ctx context.Context, entry *models.ConfigEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO company_configs (company_id, config_type, config_data, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (company_id, config_type) DO UPDATE SET
		   config_data = EXCLUDED.config_data,
		   updated_at = NOW()`,
		entry.CompanyID, string(entry.Kind), entry.Data)
	if err != nil {
		return fmt.Errorf("upsert config: %w", err)
	}
	return nil
}

// --- Data sources ---

func (s *PostgresStore) UpsertDataSource(ctx context.Context, src *models.DataSource) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO company_data_sources (company_id, data_type, source_name, table_name, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (company_id, data_type) DO UPDATE SET
		   source_name = EXCLUDED.source_name,
		   table_name = EXCLUDED.table_name,
		   created_at = NOW()`,
		src.CompanyID, string(src.DataType), src.SourceName, src.TableName)
	if err != nil {
		return fmt.Errorf("upsert data source: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDataSources(ctx context.Context, companyID string) ([]*models.DataSource, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT company_id, data_type, source_name, table_name, created_at
		 FROM company_data_sources WHERE company_id = $1 ORDER BY data_type`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list data sources: %w", err)
	}
	defer rows.Close()

	var sources []*models.DataSource
	for rows.Next() {
		var d models.DataSource
		if err := rows.Scan(&d.CompanyID, &d.DataType, &d.SourceName, &d.TableName, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan data source: %w", err)
		}
		sources = append(sources, &d)
	}
	return sources, rows.Err()
}

// --- Catalog ---

func (s *PostgresStore) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		 ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *PostgresStore) TableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = 'public' AND table_name = $1
		 ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("table columns: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func (s *PostgresStore) CountCompanyRows(ctx context.Context, table, companyID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE company_id = $1`,
		pgx.Identifier{table}.Sanitize())
	var count int
	if err := s.pool.QueryRow(ctx, query, companyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count company rows in %s: %w", table, err)
	}
	return count, nil
}

// --- Datasets ---

// AppendDataset writes ds into every table in tables inside one transaction,
// creating missing tables from the canonical column schema. Either all
// tables receive the rows or none do.
func (s *PostgresStore) AppendDataset(ctx context.Context, tables []string, category models.Category, ds *models.Dataset) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	var written int64
	for _, table := range tables {
		ddl := createTableDDL(table, category, ds)
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return 0, fmt.Errorf("ensure table %s: %w", table, err)
		}

		copyRows := make([][]any, len(ds.Rows))
		for i, row := range ds.Rows {
			vals := make([]any, len(ds.Columns))
			for j, col := range ds.Columns {
				vals[j] = storageValue(category, col, row[col])
			}
			copyRows[i] = vals
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, ds.Columns, pgx.CopyFromRows(copyRows))
		if err != nil {
			return 0, fmt.Errorf("copy into %s: %w", table, err)
		}
		written = n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return written, nil
}

func (s *PostgresStore) QueryDataset(ctx context.Context, table, companyID string) (*models.Dataset, error) {
	query := fmt.Sprintf(`SELECT * FROM %s`, pgx.Identifier{table}.Sanitize())
	args := []any{}
	if companyID != "" {
		query += ` WHERE company_id = $1`
		args = append(args, companyID)
	}
	query += ` ORDER BY date DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dataset %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	ds := &models.Dataset{Columns: make([]string, len(fields))}
	for i, f := range fields {
		ds.Columns[i] = string(f.Name)
	}

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		row := make(map[string]any, len(vals))
		for i, v := range vals {
			row[ds.Columns[i]] = datasetValue(v)
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, rows.Err()
}

// createTableDDL builds a CREATE TABLE IF NOT EXISTS statement covering all
// dataset columns. Canonical columns take their schema type; anything else
// is inferred from the first non-nil value.
func createTableDDL(table string, category models.Category, ds *models.Dataset) string {
	types := make(map[string]schema.ColumnType, len(ds.Columns))
	for _, c := range schema.CanonicalColumns(category) {
		types[c.Name] = c.Type
	}
	types[models.CompanyIDColumn] = schema.TypeText

	defs := make([]string, 0, len(ds.Columns))
	for _, col := range ds.Columns {
		t, ok := types[col]
		if !ok {
			t = inferColumnType(ds.Column(col))
		}
		defs = append(defs, fmt.Sprintf("%s %s", pgx.Identifier{col}.Sanitize(), sqlType(t)))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(defs, ", "))
}

func inferColumnType(vals []any) schema.ColumnType {
	for _, v := range vals {
		switch v.(type) {
		case nil:
			continue
		case float64, float32, int, int64:
			return schema.TypeNumeric
		case bool:
			return schema.TypeBool
		default:
			return schema.TypeText
		}
	}
	return schema.TypeText
}

func sqlType(t schema.ColumnType) string {
	switch t {
	case schema.TypeDate:
		return "date"
	case schema.TypeNumeric:
		return "double precision"
	case schema.TypeBool:
		return "boolean"
	default:
		return "text"
	}
}

// storageValue converts a dataset cell into the value CopyFrom needs for the
// column's storage type.
func storageValue(category models.Category, col string, v any) any {
	if v == nil {
		return nil
	}
	for _, c := range schema.CanonicalColumns(category) {
		if c.Name != col {
			continue
		}
		switch c.Type {
		case schema.TypeDate:
			if t, ok := schema.ParseDate(v); ok {
				return t
			}
		case schema.TypeNumeric:
			if n, ok := schema.Numeric(v); ok {
				return n
			}
		}
		break
	}
	return v
}

// datasetValue normalizes driver values back into dataset cell types.
func datasetValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return v
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()
	return scanAPIKeys(rows)
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, company_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.CompanyID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()
	return scanAPIKeys(rows)
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAPIKeys(rows pgx.Rows) ([]*models.APIKey, error) {
	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.CompanyID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
