package core

// Matrix is a raw query result: row 0 is the header row, every following
// row is a data row. Cell values are canonical scalars (see Canonical).
//
// Data rows are expected to have the header's length, but consumers must
// tolerate rows that are shorter or longer.
type Matrix [][]any

// IsEmpty reports whether the matrix has no header row, or a header row
// without any columns.
func (m Matrix) IsEmpty() bool {
	return len(m) == 0 || len(m[0]) == 0
}

// Header returns the header row as column names.
// Non-string header cells are rendered with FormatScalar.
func (m Matrix) Header() []string {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, len(m[0]))
	for i, v := range m[0] {
		if s, ok := v.(string); ok {
			names[i] = s
			continue
		}
		names[i] = FormatScalar(v, "")
	}
	return names
}

// Rows returns the data rows (everything after the header).
func (m Matrix) Rows() [][]any {
	if len(m) < 2 {
		return nil
	}
	return m[1:]
}

// RowCount returns the number of data rows.
func (m Matrix) RowCount() int {
	if len(m) == 0 {
		return 0
	}
	return len(m) - 1
}

// Clone returns a deep copy of the row slices. Cell values are scalars and
// are copied by value.
func (m Matrix) Clone() Matrix {
	if m == nil {
		return nil
	}
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = append([]any(nil), row...)
	}
	return out
}

// NewMatrix builds a matrix from a header and data rows.
func NewMatrix(header []string, rows ...[]any) Matrix {
	m := make(Matrix, 0, len(rows)+1)
	h := make([]any, len(header))
	for i, name := range header {
		h[i] = name
	}
	m = append(m, h)
	m = append(m, rows...)
	return m
}
