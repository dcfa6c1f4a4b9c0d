// Package result shapes raw query matrices into columns and records for
// display and export.
package result

import "github.com/leapstack-labs/dbmitra/pkg/core"

// Normalize derives column descriptors and records from a raw matrix.
//
// Columns follow the header order, one per header cell. Each data row
// becomes one Record: cells beyond the header length are dropped, and
// fields missing from a short row are absent from Record.Fields. Repeated
// header names share a single field key, last value wins.
//
// An empty matrix yields two empty slices. The input is not modified.
func Normalize(m core.Matrix) ([]core.Column, []core.Record) {
	if len(m) == 0 {
		return []core.Column{}, []core.Record{}
	}

	names := m.Header()
	columns := make([]core.Column, len(names))
	for i, name := range names {
		columns[i] = core.Column{Name: name, Index: i}
	}

	rows := m.Rows()
	records := make([]core.Record, len(rows))
	for pos, row := range rows {
		n := min(len(row), len(names))
		values := make([]any, n)
		copy(values, row[:n])

		fields := make(map[string]any, n)
		for i := 0; i < n; i++ {
			fields[names[i]] = values[i]
		}

		records[pos] = core.Record{
			Position: pos,
			Values:   values,
			Fields:   fields,
		}
	}

	return columns, records
}

// Set bundles a raw matrix with its normalized form.
type Set struct {
	Matrix  core.Matrix
	Columns []core.Column
	Records []core.Record
}

// NewSet normalizes m and returns the bundle.
func NewSet(m core.Matrix) *Set {
	cols, recs := Normalize(m)
	return &Set{Matrix: m, Columns: cols, Records: recs}
}

// RowCount returns the number of records.
func (s *Set) RowCount() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// ColumnNames returns the column names in header order.
func (s *Set) ColumnNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// First returns the first record, if any.
func (s *Set) First() (core.Record, bool) {
	if s == nil || len(s.Records) == 0 {
		return core.Record{}, false
	}
	return s.Records[0], true
}
