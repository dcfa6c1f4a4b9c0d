package export

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/leapstack-labs/dbmitra/internal/testutil"
	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMatrix() core.Matrix {
	return core.NewMatrix([]string{"id", "name", "score", "active"},
		[]any{int64(1), "alice", 9.5, true},
		[]any{int64(2), "bob", nil, false},
		[]any{int64(3), "carol", 7.0, nil},
	)
}

func testOptions(t *testing.T) Options {
	opts := DefaultOptions()
	opts.Logger = testutil.NewTestLogger(t)
	return opts
}

func TestExport_EmptyMatrix(t *testing.T) {
	tests := []struct {
		name   string
		matrix core.Matrix
	}{
		{name: "nil", matrix: nil},
		{name: "no rows", matrix: core.Matrix{}},
		{name: "empty header", matrix: core.Matrix{{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out.json")

			err := Export(context.Background(), FormatJSON, tt.matrix, dest, testOptions(t))
			require.Error(t, err)
			assert.True(t, core.IsExportReason(err, core.ExportReasonEmpty))
			assert.ErrorIs(t, err, core.ErrEmptyResult)

			_, statErr := os.Stat(dest)
			assert.True(t, os.IsNotExist(statErr), "no destination file may be created")
		})
	}
}

func TestExport_HeaderOnly(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")

	err := Export(context.Background(), FormatCSV, core.NewMatrix([]string{"a", "b"}), dest, testOptions(t))
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestExport_UnknownFormat(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.yaml")

	err := Export(context.Background(), Format("yaml"), sampleMatrix(), dest, testOptions(t))
	require.Error(t, err)
	assert.True(t, core.IsExportReason(err, core.ExportReasonFormat))
}

func TestExport_UnknownCompression(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.json")
	opts := testOptions(t)
	opts.Compression = "lzma"

	err := Export(context.Background(), FormatJSON, sampleMatrix(), dest, opts)
	require.Error(t, err)
	assert.True(t, core.IsExportReason(err, core.ExportReasonFormat))
}

func TestExport_InvalidDestination(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		dest string
	}{
		{name: "empty", dest: "   "},
		{name: "missing parent", dest: filepath.Join(dir, "missing", "out.json")},
		{name: "directory", dest: dir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Export(context.Background(), FormatJSON, sampleMatrix(), tt.dest, testOptions(t))
			require.Error(t, err)
			assert.True(t, core.IsExportReason(err, core.ExportReasonDestination), "got %v", err)
		})
	}
}

func TestExport_EncodeFailureKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(dest, []byte("previous"), 0o644))

	m := core.NewMatrix([]string{"x"}, []any{int64(1)}, []any{math.NaN()})
	err := Export(context.Background(), FormatJSON, m, dest, testOptions(t))
	require.Error(t, err)
	assert.True(t, core.IsExportReason(err, core.ExportReasonEncode))
	assert.ErrorIs(t, err, ErrUnencodable)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be cleaned up")
}

func TestExport_UnsupportedValueType(t *testing.T) {
	m := core.Matrix{{"x"}, {struct{}{}}}

	for _, f := range []Format{FormatJSON, FormatCSV, FormatXML, FormatXLSX} {
		t.Run(string(f), func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out."+string(f))
			err := Export(context.Background(), f, m, dest, testOptions(t))
			require.Error(t, err)
			assert.True(t, core.IsExportReason(err, core.ExportReasonEncode), "got %v", err)

			_, statErr := os.Stat(dest)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestExport_OverwritesDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(dest, []byte("old content that is longer than the new one\n"), 0o600))

	m := core.NewMatrix([]string{"a"}, []any{"1"})
	require.NoError(t, Export(context.Background(), FormatCSV, m, dest, testOptions(t)))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))
}

func TestExport_PreservesDestinationMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	m := core.NewMatrix([]string{"a"}, []any{"1"})

	for _, mode := range []os.FileMode{0o600, 0o640, 0o664} {
		t.Run(mode.String(), func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out.csv")
			require.NoError(t, os.WriteFile(dest, []byte("old"), 0o600))
			require.NoError(t, os.Chmod(dest, mode))

			require.NoError(t, Export(context.Background(), FormatCSV, m, dest, testOptions(t)))

			fi, err := os.Stat(dest)
			require.NoError(t, err)
			assert.Equal(t, mode, fi.Mode().Perm())
		})
	}
}

func TestExport_NewFileFollowsUmask(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	dir := t.TempDir()

	ref, err := os.Create(filepath.Join(dir, "reference"))
	require.NoError(t, err)
	require.NoError(t, ref.Close())
	want, err := os.Stat(ref.Name())
	require.NoError(t, err)

	dest := filepath.Join(dir, "out.json")
	require.NoError(t, Export(context.Background(), FormatJSON, sampleMatrix(), dest, testOptions(t)))

	got, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, want.Mode().Perm(), got.Mode().Perm())
}

func TestExport_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dest := filepath.Join(t.TempDir(), "out.json")

	err := Export(ctx, FormatJSON, sampleMatrix(), dest, testOptions(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExportAll(t *testing.T) {
	dir := t.TempDir()
	targets := []Target{
		{Format: FormatJSON, Path: filepath.Join(dir, "out.json")},
		{Format: FormatCSV, Path: filepath.Join(dir, "out.csv")},
		{Format: FormatXML, Path: filepath.Join(dir, "out.xml")},
		{Format: FormatXLSX, Path: filepath.Join(dir, "out.xlsx")},
	}

	require.NoError(t, ExportAll(context.Background(), sampleMatrix(), targets, testOptions(t)))
	for _, target := range targets {
		info, err := os.Stat(target.Path)
		require.NoError(t, err, target.Path)
		assert.Positive(t, info.Size())
	}

	err := ExportAll(context.Background(), nil, targets, testOptions(t))
	assert.True(t, core.IsExportReason(err, core.ExportReasonEmpty))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv, json, xlsx, xml")
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"out.json", FormatJSON, true},
		{"/tmp/Report.CSV", FormatCSV, true},
		{"dump.xml.gz", FormatXML, true},
		{"dump.xlsx.zst", FormatXLSX, true},
		{"noext", "", false},
		{"notes.txt", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatFromPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDestination(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ResolveDestination("~/dbmitra-test-out.json")
	if _, statErr := os.Stat(home); statErr == nil {
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "dbmitra-test-out.json"), got)
	}

	dir := t.TempDir()
	got, err = ResolveDestination(filepath.Join(dir, "sub", "..", "out.csv"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.csv"), got)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = ResolveDestination(filepath.Join(file, "out.csv"))
	assert.Error(t, err, "parent must be a directory")
}
