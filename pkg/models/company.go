package models

import (
	"encoding/json"
	"time"
)

// Company represents an onboarded organization. Every config entry, data
// source, and uploaded row belongs to a company. The identifier is a stable
// string token chosen at creation time and never changes afterwards.
type Company struct {
	ID          string          `db:"company_id"   json:"company_id"`
	Name        string          `db:"company_name" json:"company_name"`
	Industry    string          `db:"industry"     json:"industry"`
	Description string          `db:"description"  json:"description"`
	Settings    json.RawMessage `db:"settings"     json:"settings,omitempty"`
	IsActive    bool            `db:"is_active"    json:"is_active"`
	CreatedAt   time.Time       `db:"created_at"   json:"created_at"`
}
