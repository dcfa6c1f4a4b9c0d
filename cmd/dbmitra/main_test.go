// Package main provides tests for the dbmitra CLI.
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/dbmitra/internal/cli"
	"github.com/leapstack-labs/dbmitra/internal/cli/testutil"
)

// run executes the root command with args from an empty working
// directory so no stray dbmitra.yaml is picked up.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	output, err := run(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "dbmitra") {
		t.Errorf("version output should contain 'dbmitra', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"open", "tables", "query", "export", "shell", "config", "completion"}
	for _, expected := range expectedCommands {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestOpenCommand(t *testing.T) {
	db := testutil.SetupTestDatabase(t)

	output, err := run(t, "open", db)
	if err != nil {
		t.Fatalf("open command error = %v", err)
	}

	testutil.AssertContains(t, output, "Connected to sqlite database")
	testutil.AssertContains(t, output, "alice")
}

func TestOpenCommandPreviewLimit(t *testing.T) {
	db := testutil.SetupTestDatabase(t)

	output, err := run(t, "open", db, "--preview-limit", "1")
	if err != nil {
		t.Fatalf("open command error = %v", err)
	}

	testutil.AssertContains(t, output, `LIMIT 1`)
	testutil.AssertContains(t, output, "(1 rows)")
	testutil.AssertNotContains(t, output, "bob")
}

func TestQueryCommandJSON(t *testing.T) {
	db := testutil.SetupTestDatabase(t)

	output, err := run(t, "query", db, "SELECT name FROM users ORDER BY id", "--output", "json", "--all")
	if err != nil {
		t.Fatalf("query command error = %v", err)
	}

	testutil.AssertNoANSI(t, output)
	testutil.AssertContains(t, output, `"name": "alice"`)
	testutil.AssertContains(t, output, `"name": "bob"`)
}

func TestQueryCommandMarkdown(t *testing.T) {
	db := testutil.SetupTestDatabase(t)

	output, err := run(t, "query", db, "SELECT id, name FROM users ORDER BY id", "-o", "md")
	if err != nil {
		t.Fatalf("query command error = %v", err)
	}

	testutil.AssertNoANSI(t, output)
	testutil.AssertMarkdownTable(t, output)
	testutil.AssertContains(t, output, "alice")
}

func TestExportCommand(t *testing.T) {
	db := testutil.SetupTestDatabase(t)
	dest := filepath.Join(t.TempDir(), "users.csv")

	_, err := run(t, "export", db, "SELECT id, name FROM users ORDER BY id", "-O", dest, "--delimiter", ";")
	if err != nil {
		t.Fatalf("export command error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if got, want := string(data), "id;name\n1;alice\n2;bob\n"; got != want {
		t.Errorf("export = %q, want %q", got, want)
	}
}

func TestInvalidOutputFlag(t *testing.T) {
	db := testutil.SetupTestDatabase(t)

	_, err := run(t, "open", db, "-o", "pie")
	if err == nil {
		t.Fatal("expected error for unknown view")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("error should mention invalid configuration, got: %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	output, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion command error = %v", err)
	}
	testutil.AssertContains(t, output, "dbmitra")
}
