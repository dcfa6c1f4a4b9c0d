// Package config provides configuration management for the dbmitra CLI.
//
// Values are layered with koanf: built-in defaults, then dbmitra.yaml,
// then DBMITRA_* environment variables, then explicitly set flags.
package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/dbmitra/internal/cli/view"
	"github.com/leapstack-labs/dbmitra/internal/session"
	"github.com/leapstack-labs/dbmitra/pkg/export"
)

// Config holds all CLI configuration options.
type Config struct {
	PreviewLimit int            `koanf:"preview_limit" yaml:"preview_limit"`
	Output       string         `koanf:"output" yaml:"output"`
	NullText     string         `koanf:"null_text" yaml:"null_text"`
	CSVDelimiter string         `koanf:"csv_delimiter" yaml:"csv_delimiter"`
	Compression  string         `koanf:"compression" yaml:"compression"`
	SheetName    string         `koanf:"sheet_name" yaml:"sheet_name,omitempty"`
	Engine       string         `koanf:"engine" yaml:"engine,omitempty"`
	ReadOnly     bool           `koanf:"read_only" yaml:"read_only"`
	Verbose      bool           `koanf:"verbose" yaml:"verbose"`
	HistoryFile  string         `koanf:"history_file" yaml:"history_file,omitempty"`
	Params       map[string]any `koanf:"params" yaml:"params,omitempty"`
}

// Default configuration values.
const (
	DefaultPreviewLimit = 100
	DefaultOutput       = "grid"
	DefaultNullText     = "NULL"
	DefaultDelimiter    = ","
	DefaultHistoryName  = ".dbmitra_history"
	EnvPrefix           = "DBMITRA_"
)

// ConfigFileNames are searched, in order, when no --config is given.
var ConfigFileNames = []string{"dbmitra.yaml", "dbmitra.yml"}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		PreviewLimit: DefaultPreviewLimit,
		Output:       DefaultOutput,
		NullText:     DefaultNullText,
		CSVDelimiter: DefaultDelimiter,
	}
}

// Delimiter returns the CSV delimiter as a rune. Validate guarantees a
// single character.
func (c *Config) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ','
}

// ExportOptions builds encoder options from the configuration.
func (c *Config) ExportOptions(logger *slog.Logger) export.Options {
	comp, _ := export.ParseCompression(c.Compression)
	return export.Options{
		NullText:    c.NullText,
		Delimiter:   c.Delimiter(),
		Compression: comp,
		SheetName:   c.SheetName,
		Logger:      logger,
	}
}

// SessionOptions builds session options from the configuration.
func (c *Config) SessionOptions(logger *slog.Logger) session.Options {
	return session.Options{
		PreviewLimit: c.PreviewLimit,
		Engine:       c.Engine,
		ReadOnly:     c.ReadOnly,
		Params:       c.Params,
		Export:       c.ExportOptions(logger),
	}
}

// ViewMode returns the configured output view.
func (c *Config) ViewMode() view.Mode {
	mode, err := view.ParseMode(c.Output)
	if err != nil {
		return view.ModeGrid
	}
	return mode
}

// ViewOptions builds view options from the configuration.
func (c *Config) ViewOptions(all bool) view.Options {
	return view.Options{NullText: c.NullText, All: all}
}

// HistoryPath returns the REPL history file, defaulting to
// ~/.dbmitra_history. It returns "" when no home directory is known.
func (c *Config) HistoryPath() string {
	if c.HistoryFile != "" {
		return expandHome(c.HistoryFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultHistoryName)
}

func expandHome(p string) string {
	if p == "~" || len(p) > 1 && p[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}
