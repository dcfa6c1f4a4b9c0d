package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/dbmitra/internal/testutil"
	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/leapstack-labs/dbmitra/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseSQLAdapter_Close(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		expectErr bool
	}{
		{
			name:      "close with nil DB",
			setupDB:   false,
			expectErr: false,
		},
		{
			name:      "close with open DB",
			setupDB:   true,
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{Logger: testutil.NewTestLogger(t)}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				base.DB = db
			}

			err := base.Close()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.False(t, base.IsConnected())
		})
	}
}

func TestBaseSQLAdapter_Query(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		want      core.Matrix
		expectErr error
		errMsg    string
	}{
		{
			name:      "query without connection",
			setupDB:   false,
			sql:       "SELECT 1",
			expectErr: core.ErrNotConnected,
		},
		{
			name:    "query success",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "score", "blob", "at"}).
					AddRow(int64(1), "alice", 9.5, []byte("raw"), ts).
					AddRow(int64(2), nil, nil, nil, nil)
				mock.ExpectQuery("SELECT \\* FROM users").WillReturnRows(rows)
			},
			sql: "SELECT * FROM users",
			want: core.Matrix{
				{"id", "name", "score", "blob", "at"},
				{int64(1), "alice", 9.5, "raw", "2024-05-06T07:08:09Z"},
				{int64(2), nil, nil, nil, nil},
			},
		},
		{
			name:    "header only",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"a", "b"}))
			},
			sql:  "SELECT a, b FROM t WHERE 0",
			want: core.Matrix{{"a", "b"}},
		},
		{
			name:    "no columns",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("UPDATE").WillReturnRows(sqlmock.NewRows(nil))
			},
			sql:  "UPDATE t SET a = 1",
			want: core.Matrix{},
		},
		{
			name:    "query with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("INVALID SQL").WillReturnError(assert.AnError)
			},
			sql:       "INVALID SQL",
			expectErr: assert.AnError,
			errMsg:    "query failed",
		},
		{
			name:    "row iteration error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"a"}).
					AddRow("x").
					AddRow("y").
					RowError(1, assert.AnError)
				mock.ExpectQuery("SELECT").WillReturnRows(rows)
			},
			sql:       "SELECT a FROM t",
			expectErr: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			base := &BaseSQLAdapter{Logger: testutil.NewTestLogger(t)}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()

				if tt.setupMock != nil {
					tt.setupMock(mock)
				}
				base.DB = db
			}

			got, err := base.Query(ctx, tt.sql)
			if tt.expectErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectErr)

				var qe *core.QueryError
				require.True(t, errors.As(err, &qe), "errors are QueryError")
				assert.Equal(t, tt.sql, qe.Query)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBaseSQLAdapter_ListTables(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(dialect.DuckDB.ListTablesQuery).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("orders").AddRow("users"))

	base := &BaseSQLAdapter{DB: db, SQL: dialect.DuckDB}
	got, err := base.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Matrix{{"name"}, {"orders"}, {"users"}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaseSQLAdapter_DefaultDialect(t *testing.T) {
	base := &BaseSQLAdapter{}
	assert.Same(t, dialect.SQLite, base.Dialect())
	assert.Empty(t, base.Path())
}
