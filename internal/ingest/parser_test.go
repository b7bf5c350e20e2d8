package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_CSV(t *testing.T) {
	csv := "date,product_line,units_sold,revenue,on_time\n" +
		"2024-01-15,Electronics,100,5000.5,true\n" +
		"2024-02-15, Machinery ,40,,false\n"

	ds, err := ParseFile("upload.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "product_line", "units_sold", "revenue", "on_time"}, ds.Columns)
	require.Len(t, ds.Rows, 2)

	assert.Equal(t, "2024-01-15", ds.Rows[0]["date"])
	assert.Equal(t, 100.0, ds.Rows[0]["units_sold"])
	assert.Equal(t, 5000.5, ds.Rows[0]["revenue"])
	assert.Equal(t, true, ds.Rows[0]["on_time"])

	assert.Nil(t, ds.Rows[1]["revenue"])
	assert.Equal(t, false, ds.Rows[1]["on_time"])
}

func TestParseFile_JSON(t *testing.T) {
	body := `[
		{"date": "2024-01-15", "revenue": 100.5},
		{"date": "2024-02-15", "revenue": 80, "region": "EMEA"}
	]`

	ds, err := ParseFile("upload.json", strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "region", "revenue"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, 100.5, ds.Rows[0]["revenue"])
	assert.Equal(t, "EMEA", ds.Rows[1]["region"])
}

func TestParseFile_UnsupportedExtension(t *testing.T) {
	_, err := ParseFile("upload.parquet", strings.NewReader("x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestParseFile_InvalidJSON(t *testing.T) {
	_, err := ParseFile("upload.json", strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestParseFile_EmptyCSV(t *testing.T) {
	_, err := ParseFile("upload.csv", strings.NewReader(""))
	assert.Error(t, err)
}

func TestInferValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"12.5", 12.5},
		{"0", 0.0},
		{"-3", -3.0},
		{"true", true},
		{"FALSE", false},
		{"", nil},
		{"  ", nil},
		{"Electronics", "Electronics"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferValue(tt.input), "input %q", tt.input)
	}
}
