package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/connerkup/ecometrics/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ParseFile reads an uploaded file into a dataset, choosing the parser by
// filename extension. There is no content sniffing: an unknown extension is
// an error.
func ParseFile(filename string, r io.Reader) (*models.Dataset, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx", ".xls":
		return parseExcel(r)
	case ".json":
		return parseJSON(r)
	default:
		return nil, fmt.Errorf("unsupported file format %q: use CSV, Excel, or JSON", filepath.Ext(filename))
	}
}

func parseCSV(r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	ds := &models.Dataset{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = inferValue(record[i])
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func parseExcel(r io.Reader) (*models.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	header := rows[0]
	ds := &models.Dataset{Columns: header}
	for _, record := range rows[1:] {
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = inferValue(record[i])
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func parseJSON(r io.Reader) (*models.Dataset, error) {
	var records []map[string]any
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode json records: %w", err)
	}

	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	sort.Strings(columns)

	return &models.Dataset{Columns: columns, Rows: records}, nil
}

// inferValue converts a text cell into a typed value: numbers become
// float64, true/false become bool, empty cells become nil, everything else
// stays a string.
func inferValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
