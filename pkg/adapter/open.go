package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/dbmitra/pkg/core"
)

// EngineForPath picks the registered engine whose extensions match path.
func EngineForPath(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}

	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, reg := range registry {
		for _, e := range reg.Extensions {
			if e == ext {
				return reg.Name, true
			}
		}
	}
	return "", false
}

// SupportedExtensions lists every registered extension (sorted by engine).
func SupportedExtensions() []string {
	var exts []string
	for _, name := range ListAdapters() {
		reg, _ := Get(name)
		exts = append(exts, reg.Extensions...)
	}
	return exts
}

// Open resolves path, picks an engine (explicitly named or by extension)
// and connects. Every failure is returned as *core.OpenError.
func Open(ctx context.Context, cfg Config, engine string, logger *slog.Logger) (Adapter, error) {
	raw := cfg.Path
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil, &core.OpenError{Path: raw, Err: fmt.Errorf("database path is empty")}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &core.OpenError{Path: path, Err: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &core.OpenError{Path: abs, Err: fmt.Errorf("file does not exist")}
		}
		return nil, &core.OpenError{Path: abs, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &core.OpenError{Path: abs, Err: fmt.Errorf("not a regular file")}
	}

	if engine == "" {
		var ok bool
		engine, ok = EngineForPath(abs)
		if !ok {
			return nil, &core.OpenError{
				Path: abs,
				Err:  fmt.Errorf("not a supported database file (expected one of %s)", strings.Join(SupportedExtensions(), ", ")),
			}
		}
	}

	a, err := NewAdapter(engine, logger)
	if err != nil {
		return nil, &core.OpenError{Path: abs, Err: err}
	}

	cfg.Path = abs
	if err := a.Open(ctx, cfg); err != nil {
		return nil, &core.OpenError{Path: abs, Err: err}
	}
	return a, nil
}
