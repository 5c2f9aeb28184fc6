package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Table is a CSV artifact with a header row.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

// Append adds one row. Values are rendered with FormatFloat rules for floats.
func (t *Table) Append(values ...interface{}) {
	row := make([]string, len(values))
	for i, value := range values {
		row[i] = formatCell(value)
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Row returns an accessor for row i.
func (t *Table) Row(i int) Record {
	if t.index == nil {
		t.index = make(map[string]int, len(t.Header))
		for j, name := range t.Header {
			t.index[strings.TrimSpace(name)] = j
		}
	}
	return Record{table: t, values: t.Rows[i]}
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, column := range t.Header {
		if strings.TrimSpace(column) == name {
			return true
		}
	}
	return false
}

// WriteCSV writes the table through a tmp file and rename.
func WriteCSV(path string, table *Table) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return writeAtomic(path, buf.Bytes())
}

// ReadCSV loads a CSV artifact. A missing file is ErrMissingArtifact.
func ReadCSV(path string) (*Table, error) {
	data, err := readArtifact(path)
	if err != nil {
		return nil, err
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv: %s", path)
	}
	return &Table{Header: records[0], Rows: records[1:]}, nil
}

// Record reads typed cells from one row by column name.
type Record struct {
	table  *Table
	values []string
}

func (r Record) String(column string) string {
	i, ok := r.table.index[column]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

// Float returns NaN for empty cells.
func (r Record) Float(column string) (float64, error) {
	raw := r.String(column)
	if raw == "" {
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}
	return f, nil
}

func (r Record) Uint(column string) (uint64, error) {
	raw := r.String(column)
	if raw == "" {
		return 0, fmt.Errorf("column %s is empty", column)
	}
	// Some producers write integers as floats.
	if strings.ContainsAny(raw, ".eE") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("column %s: invalid uint %q", column, raw)
		}
		return uint64(f), nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}
	return n, nil
}

func (r Record) Int(column string) (int64, error) {
	raw := r.String(column)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}
	return n, nil
}

func (r Record) Bool(column string) bool {
	v, _ := strconv.ParseBool(r.String(column))
	return v
}

// FormatFloat renders a float for CSV output; NaN and infinities become empty cells.
func FormatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatCell(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return FormatFloat(v)
	case float32:
		return FormatFloat(float64(v))
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
