package models

import "time"

// DataSource records where a company's data for a category last came from
// and which staging table holds it. One row per (company, category),
// replaced on every successful upload.
type DataSource struct {
	CompanyID  string    `db:"company_id"  json:"company_id"`
	DataType   Category  `db:"data_type"   json:"data_type"`
	SourceName string    `db:"source_name" json:"source_name"`
	TableName  string    `db:"table_name"  json:"table_name"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}
