package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/dbmitra/internal/testutil"
	"github.com/leapstack-labs/dbmitra/pkg/adapter"
	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestDB writes a SQLite file with the given statements applied.
func createTestDB(t *testing.T, stmts ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	require.NoError(t, db.Close())
	return path
}

func openTestDB(t *testing.T, cfg adapter.Config) *Adapter {
	t.Helper()

	adp := New(testutil.NewTestLogger(t))
	require.NoError(t, adp.Open(context.Background(), cfg))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "file:///data/app.db?mode=rw", DSN("/data/app.db", false))
	assert.Equal(t, "file:///data/app.db?mode=ro", DSN("/data/app.db", true))
	assert.Equal(t, "file:///data/my%20app.db?mode=ro", DSN("/data/my app.db", true))
}

func TestAdapter_Open(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		wantErr error
	}{
		{name: "empty file", content: []byte{}},
		{name: "short garbage", content: []byte("hello"), wantErr: ErrNotDatabase},
		{name: "long garbage", content: []byte("this is definitely not a database file"), wantErr: ErrNotDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "x.db")
			require.NoError(t, os.WriteFile(path, tt.content, 0o644))

			adp := New(nil)
			err := adp.Open(context.Background(), adapter.Config{Path: path})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, adp.IsConnected())
				return
			}
			require.NoError(t, err)
			assert.NoError(t, adp.Close())
		})
	}
}

func TestAdapter_OpenMissingFileIsNotCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	adp := New(nil)
	require.Error(t, adp.Open(context.Background(), adapter.Config{Path: path}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "open must not create the file")
}

func TestAdapter_Query(t *testing.T) {
	path := createTestDB(t,
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, score REAL)",
		"INSERT INTO users VALUES (1, 'alice', 9.5), (2, NULL, NULL)",
	)
	adp := openTestDB(t, adapter.Config{Path: path})

	tests := []struct {
		name string
		sql  string
		want core.Matrix
	}{
		{
			name: "typed values",
			sql:  "SELECT id, name, score FROM users ORDER BY id",
			want: core.Matrix{
				{"id", "name", "score"},
				{int64(1), "alice", 9.5},
				{int64(2), nil, nil},
			},
		},
		{
			name: "header only",
			sql:  "SELECT id, name FROM users WHERE id > 10",
			want: core.Matrix{{"id", "name"}},
		},
		{
			name: "expression columns",
			sql:  "SELECT 1 + 1 AS two, 'x' AS s",
			want: core.Matrix{{"two", "s"}, {int64(2), "x"}},
		},
		{
			name: "statement without columns",
			sql:  "UPDATE users SET score = score",
			want: core.Matrix{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := adp.Query(context.Background(), tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdapter_QueryError(t *testing.T) {
	adp := openTestDB(t, adapter.Config{Path: createTestDB(t, "CREATE TABLE t (a)")})

	_, err := adp.Query(context.Background(), "SELEC nonsense")
	require.Error(t, err)

	var qe *core.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "SELEC nonsense", qe.Query)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestAdapter_ListTables(t *testing.T) {
	path := createTestDB(t,
		"CREATE TABLE users (id INTEGER)",
		"CREATE TABLE orders (id INTEGER)",
		"CREATE VIEW v AS SELECT * FROM users",
		"CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT)",
	)
	adp := openTestDB(t, adapter.Config{Path: path})

	got, err := adp.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Matrix{{"name"}, {"users"}, {"orders"}, {"items"}}, got)
}

func TestAdapter_ReadOnly(t *testing.T) {
	path := createTestDB(t, "CREATE TABLE t (id INTEGER)")
	adp := openTestDB(t, adapter.Config{Path: path, ReadOnly: true})

	_, err := adp.Query(context.Background(), "INSERT INTO t VALUES (1) RETURNING id")
	assert.Error(t, err, "writes should fail in read-only mode")
}

func TestRegistered(t *testing.T) {
	for _, p := range []string{"a.db", "a.sqlite", "a.SQLITE3"} {
		engine, ok := adapter.EngineForPath(p)
		require.True(t, ok, p)
		assert.Equal(t, "sqlite", engine, p)
	}
}

func TestGatewayOpen(t *testing.T) {
	path := createTestDB(t, "CREATE TABLE t (id INTEGER)", "INSERT INTO t VALUES (7)")

	a, err := adapter.Open(context.Background(), adapter.Config{Path: path}, "", testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	assert.Equal(t, path, a.Path())
	got, err := a.Query(context.Background(), "SELECT id FROM t")
	require.NoError(t, err)
	assert.Equal(t, core.Matrix{{"id"}, {int64(7)}}, got)
}
