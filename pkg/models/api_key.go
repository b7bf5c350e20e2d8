package models

import (
	"time"

	"github.com/google/uuid"
)

// API key scopes. A key carries one or more; admin implies nothing else.
const (
	ScopeRead   = "read"
	ScopeUpload = "upload"
	ScopeAdmin  = "admin"
)

// APIKey represents an authentication key for dashboard and API access.
// Raw keys are shown once at creation; only the bcrypt hash is stored.
// CompanyID is empty for keys that are not bound to a single company.
type APIKey struct {
	ID         uuid.UUID  `db:"id"           json:"id"`
	CompanyID  string     `db:"company_id"   json:"company_id,omitempty"`
	Name       string     `db:"name"         json:"name"`
	KeyHash    string     `db:"key_hash"     json:"-"`
	KeyPrefix  string     `db:"key_prefix"   json:"key_prefix"`
	Scopes     []string   `db:"scopes"       json:"scopes"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	DeletedAt  *time.Time `db:"deleted_at"   json:"-"`
	CreatedAt  time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"   json:"updated_at"`
}
