package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/dbmitra/internal/cli/view"
	"github.com/leapstack-labs/dbmitra/pkg/adapter"
	"github.com/leapstack-labs/dbmitra/pkg/export"
)

// maxPreviewLimit bounds the automatic preview.
const maxPreviewLimit = 1_000_000

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.PreviewLimit < 1 || c.PreviewLimit > maxPreviewLimit {
		return fmt.Errorf("preview_limit must be between 1 and %d, got %d", maxPreviewLimit, c.PreviewLimit)
	}

	if _, err := view.ParseMode(c.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	if utf8.RuneCountInString(c.CSVDelimiter) != 1 {
		return fmt.Errorf("csv_delimiter must be a single character, got %q", c.CSVDelimiter)
	}
	if d := c.Delimiter(); d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError {
		return fmt.Errorf("csv_delimiter %q is not allowed", c.CSVDelimiter)
	}

	if _, err := export.ParseCompression(c.Compression); err != nil {
		return fmt.Errorf("compression: %w", err)
	}

	if c.Engine != "" && !adapter.IsRegistered(strings.ToLower(c.Engine)) {
		return &adapter.UnknownAdapterError{Type: c.Engine, Available: adapter.ListAdapters()}
	}
	c.Engine = strings.ToLower(c.Engine)
	return nil
}
