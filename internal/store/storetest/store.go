// Package storetest provides an in-memory Store for tests that exercise the
// registry, pipeline, and handlers without a database.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/connerkup/ecometrics/internal/store"
	"github.com/connerkup/ecometrics/pkg/models"
)

type configKey struct {
	companyID string
	kind      models.ConfigKind
}

// Store is an in-memory store.Store. Zero value is not usable; call New.
type Store struct {
	mu sync.Mutex

	PingErr error

	companies map[string]*models.Company
	configs   map[configKey]*models.ConfigEntry
	sources   map[string][]*models.DataSource
	tables    map[string]*models.Dataset
	keys      map[uuid.UUID]*models.APIKey
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		companies: make(map[string]*models.Company),
		configs:   make(map[configKey]*models.ConfigEntry),
		sources:   make(map[string][]*models.DataSource),
		tables:    make(map[string]*models.Dataset),
		keys:      make(map[uuid.UUID]*models.APIKey),
	}
}

func (s *Store) Ping(context.Context) error { return s.PingErr }

func (s *Store) CreateCompany(_ context.Context, c *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[c.ID]; ok {
		return store.ErrDuplicateKey
	}
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *Store) ListCompanies(context.Context) ([]*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Company
	for _, c := range s.companies {
		if c.IsActive {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetCompany(_ context.Context, id string) (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) DeactivateCompany(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return store.ErrNotFound
	}
	c.IsActive = false
	return nil
}

func (s *Store) GetConfig(_ context.Context, companyID string, kind models.ConfigKind) (*models.ConfigEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.configs[configKey{companyID, kind}]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (s *Store) UpsertConfig(_ context.Context, entry *models.ConfigEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	cp.UpdatedAt = time.Now().UTC()
	s.configs[configKey{entry.CompanyID, entry.Kind}] = &cp
	return nil
}

func (s *Store) UpsertDataSource(_ context.Context, src *models.DataSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *src
	for i, existing := range s.sources[src.CompanyID] {
		if existing.DataType == src.DataType && existing.SourceName == src.SourceName {
			s.sources[src.CompanyID][i] = &cp
			return nil
		}
	}
	s.sources[src.CompanyID] = append(s.sources[src.CompanyID], &cp)
	return nil
}

func (s *Store) ListDataSources(_ context.Context, companyID string) ([]*models.DataSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.DataSource(nil), s.sources[companyID]...), nil
}

func (s *Store) ListTables(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for name := range s.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) TableColumns(_ context.Context, table string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.tables[table]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]string(nil), ds.Columns...), nil
}

func (s *Store) CountCompanyRows(_ context.Context, table, companyID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.tables[table]
	if !ok {
		return 0, store.ErrNotFound
	}
	n := 0
	for _, row := range ds.Rows {
		if row[models.CompanyIDColumn] == companyID {
			n++
		}
	}
	return n, nil
}

func (s *Store) AppendDataset(_ context.Context, tables []string, _ models.Category, ds *models.Dataset) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range tables {
		existing, ok := s.tables[table]
		if !ok {
			existing = &models.Dataset{Columns: append([]string(nil), ds.Columns...)}
			s.tables[table] = existing
		}
		existing.Rows = append(existing.Rows, ds.Clone().Rows...)
	}
	return int64(len(ds.Rows)), nil
}

func (s *Store) QueryDataset(_ context.Context, table, companyID string) (*models.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.tables[table]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := &models.Dataset{Columns: append([]string(nil), ds.Columns...)}
	for _, row := range ds.Rows {
		if companyID != "" && row[models.CompanyIDColumn] != companyID {
			continue
		}
		cp := make(map[string]any, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows = append(out.Rows, cp)
	}
	return out, nil
}

// SeedTable installs a table verbatim, bypassing AppendDataset.
func (s *Store) SeedTable(name string, ds *models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = ds.Clone()
}

// Table returns the stored dataset for assertions, or nil.
func (s *Store) Table(name string) *models.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.tables[name]
	if !ok {
		return nil
	}
	return ds.Clone()
}

func (s *Store) GetAPIKeyByPrefix(_ context.Context, prefix string) ([]*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.APIKey
	for _, k := range s.keys {
		if k.KeyPrefix == prefix && k.DeletedAt == nil {
			cp := *k
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) UpdateAPIKeyLastUsed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.keys[id]; ok {
		now := time.Now().UTC()
		k.LastUsedAt = &now
	}
	return nil
}

func (s *Store) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *key
	cp.CreatedAt = time.Now().UTC()
	s.keys[key.ID] = &cp
	return nil
}

func (s *Store) ListAPIKeys(context.Context) ([]*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.APIKey
	for _, k := range s.keys {
		if k.DeletedAt == nil {
			cp := *k
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) RevokeAPIKey(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok || k.DeletedAt != nil {
		return store.ErrNotFound
	}
	now := time.Now().UTC()
	k.DeletedAt = &now
	return nil
}
