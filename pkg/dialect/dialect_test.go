package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier(t *testing.T) {
	bracket := NewDialect("test").Identifiers("[", "]", "]]").Build()

	tests := []struct {
		name    string
		dialect *Dialect
		ident   string
		want    string
	}{
		{"plain", SQLite, "users", `"users"`},
		{"embedded quote", SQLite, `we"ird`, `"we""ird"`},
		{"only quotes", SQLite, `""`, `""""""`},
		{"spaces", DuckDB, "order items", `"order items"`},
		{"bracket escape", bracket, "a]b", "[a]]b]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.QuoteIdentifier(tt.ident))
		})
	}
}

func TestSelectAllLimit(t *testing.T) {
	q, err := SQLite.SelectAllLimit("users", 100)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "users" LIMIT 100`, q)

	q, err = SQLite.SelectAllLimit(`x"; DROP TABLE users; --`, 5)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "x""; DROP TABLE users; --" LIMIT 5`, q)

	_, err = SQLite.SelectAllLimit("", 10)
	assert.ErrorIs(t, err, ErrEmptyIdentifier)

	_, err = SQLite.SelectAllLimit("a\x00b", 10)
	assert.ErrorIs(t, err, ErrNulIdentifier)
}
