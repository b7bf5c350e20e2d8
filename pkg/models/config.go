package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ConfigKind enumerates the per-company configuration slots. At most one
// entry exists per (company, kind); writes replace the prior value entirely.
type ConfigKind string

const (
	ConfigProducts ConfigKind = "products"
	ConfigMetrics  ConfigKind = "metrics"
	ConfigSchema   ConfigKind = "schema"
	ConfigMappings ConfigKind = "mappings"
)

// ParseConfigKind validates a config kind received at the API boundary.
func ParseConfigKind(s string) (ConfigKind, error) {
	switch ConfigKind(s) {
	case ConfigProducts, ConfigMetrics, ConfigSchema, ConfigMappings:
		return ConfigKind(s), nil
	}
	return "", fmt.Errorf("unknown config kind %q", s)
}

// ConfigEntry is the persisted form of a company configuration. The payload
// is opaque JSON at this level; business logic works with the typed configs
// below and only serializes at the store boundary.
type ConfigEntry struct {
	CompanyID string          `db:"company_id"  json:"company_id"`
	Kind      ConfigKind      `db:"config_type" json:"config_type"`
	Data      json.RawMessage `db:"config_data" json:"config_data"`
	UpdatedAt time.Time       `db:"updated_at"  json:"updated_at"`
}

// CompanyConfig is the tagged union of config payloads. Kind reports which
// slot the value belongs in.
type CompanyConfig interface {
	Kind() ConfigKind
}

// ProductConfig holds the product taxonomy for a company.
type ProductConfig struct {
	ProductLines []string `json:"product_lines"`
}

func (ProductConfig) Kind() ConfigKind { return ConfigProducts }

// SchemaMappingConfig maps, per data category, canonical column names to the
// company-specific column names used in its uploads. Canonical columns absent
// from a mapping keep their canonical name (identity).
type SchemaMappingConfig struct {
	Mappings map[Category]map[string]string `json:"mappings"`
}

func (SchemaMappingConfig) Kind() ConfigKind { return ConfigSchema }

// Mapping returns the column mapping for one category, or an empty map.
func (c SchemaMappingConfig) Mapping(cat Category) map[string]string {
	if m, ok := c.Mappings[cat]; ok {
		return m
	}
	return map[string]string{}
}

// MetricsConfig holds the metric name taxonomy shown on dashboards.
type MetricsConfig struct {
	Financial   []string `json:"financial"`
	ESG         []string `json:"esg"`
	Operational []string `json:"operational"`
}

func (MetricsConfig) Kind() ConfigKind { return ConfigMetrics }

// MarshalConfig serializes a typed config for persistence.
func MarshalConfig(cfg CompanyConfig) (json.RawMessage, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal %s config: %w", cfg.Kind(), err)
	}
	return data, nil
}

// UnmarshalConfig decodes a persisted payload into the typed config for its
// kind. The mappings kind shares the schema payload shape.
func UnmarshalConfig(kind ConfigKind, data json.RawMessage) (CompanyConfig, error) {
	var cfg CompanyConfig
	var err error
	switch kind {
	case ConfigProducts:
		var c ProductConfig
		err = json.Unmarshal(data, &c)
		cfg = c
	case ConfigSchema, ConfigMappings:
		var c SchemaMappingConfig
		err = json.Unmarshal(data, &c)
		cfg = c
	case ConfigMetrics:
		var c MetricsConfig
		err = json.Unmarshal(data, &c)
		cfg = c
	default:
		return nil, fmt.Errorf("unknown config kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s config: %w", kind, err)
	}
	return cfg, nil
}
