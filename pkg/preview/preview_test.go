package preview

import (
	"testing"

	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/leapstack-labs/dbmitra/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPreview_FirstTable(t *testing.T) {
	tables := core.Matrix{{"name"}, {"users"}, {"orders"}}

	query, ok := SelectPreview(tables, dialect.SQLite, DefaultLimit)
	require.True(t, ok)
	assert.Equal(t, `SELECT * FROM "users" LIMIT 100`, query)
}

func TestSelectPreview_NoTables(t *testing.T) {
	tests := []struct {
		name   string
		tables core.Matrix
	}{
		{name: "nil", tables: nil},
		{name: "empty", tables: core.Matrix{}},
		{name: "header only", tables: core.Matrix{{"name"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, ok := SelectPreview(tt.tables, dialect.SQLite, DefaultLimit)
			assert.False(t, ok)
			assert.Empty(t, query)
		})
	}
}

func TestSelectPreview_Quoting(t *testing.T) {
	tables := core.Matrix{{"name"}, {`evil"; DROP TABLE users; --`}}

	query, ok := SelectPreview(tables, dialect.SQLite, 10)
	require.True(t, ok)
	assert.Equal(t, `SELECT * FROM "evil""; DROP TABLE users; --" LIMIT 10`, query)
}

func TestSelectPreview_RejectedNames(t *testing.T) {
	tests := []struct {
		name   string
		tables core.Matrix
	}{
		{name: "empty name", tables: core.Matrix{{"name"}, {""}}},
		{name: "nul byte", tables: core.Matrix{{"name"}, {"a\x00b"}}},
		{name: "null cell", tables: core.Matrix{{"name"}, {nil}}},
		{name: "numeric cell", tables: core.Matrix{{"name"}, {int64(3)}}},
		{name: "short row", tables: core.Matrix{{"type", "name"}, {"table"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := SelectPreview(tt.tables, dialect.SQLite, DefaultLimit)
			assert.False(t, ok)
		})
	}
}

func TestSelectPreview_NameColumnLookup(t *testing.T) {
	tables := core.Matrix{{"type", "NAME"}, {"table", "orders"}, {"table", "users"}}

	query, ok := SelectPreview(tables, dialect.DuckDB, 0)
	require.True(t, ok)
	assert.Equal(t, `SELECT * FROM "orders" LIMIT 100`, query, "zero limit falls back to default")
}

func TestSelectPreview_Deterministic(t *testing.T) {
	tables := core.Matrix{{"name"}, {"b"}, {"a"}}

	first, _ := SelectPreview(tables, nil, 5)
	for i := 0; i < 10; i++ {
		again, _ := SelectPreview(tables, nil, 5)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, `SELECT * FROM "b" LIMIT 5`, first)
}
