package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// errNoSQL is returned when no statement was given.
var errNoSQL = errors.New("no SQL given (pass it as an argument, with --input, or on stdin)")

// readSQL picks the statement from the argument, the --input file, or a
// piped stdin, in that order. A trailing semicolon is dropped.
func readSQL(arg, inputFile string, stdin io.Reader, allowStdin bool) (string, error) {
	var sql string
	switch {
	case arg != "":
		sql = arg
	case inputFile != "":
		data, err := os.ReadFile(inputFile) //nolint:gosec // user-chosen input file
		if err != nil {
			return "", fmt.Errorf("failed to read SQL file: %w", err)
		}
		sql = string(data)
	case allowStdin && stdin != nil && !isTerminal(stdin):
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read SQL from stdin: %w", err)
		}
		sql = string(data)
	}

	sql = strings.TrimSuffix(strings.TrimSpace(sql), ";")
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return "", errNoSQL
	}
	return sql, nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
