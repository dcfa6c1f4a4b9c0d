// Package export serializes a raw result matrix to interchange formats and
// writes it to disk without ever leaving a half-written destination file.
//
// Encoders are registered per format; json, csv, xml and xlsx are built in.
// Every export works on the full matrix it is given. Callers that share a
// matrix with a concurrent writer must pass a snapshot.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/dbmitra/pkg/core"
	"golang.org/x/sync/errgroup"
)

// Format names an export encoding.
type Format string

// Built-in formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXML  Format = "xml"
	FormatXLSX Format = "xlsx"
)

// ErrUnencodable marks values an encoder cannot represent.
var ErrUnencodable = errors.New("value cannot be encoded")

// Encoder writes a whole matrix in one format.
type Encoder interface {
	Encode(w io.Writer, m core.Matrix, opts Options) error
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(w io.Writer, m core.Matrix, opts Options) error

// Encode calls f.
func (f EncoderFunc) Encode(w io.Writer, m core.Matrix, opts Options) error {
	return f(w, m, opts)
}

// Options tunes encoders. The zero value is usable; see DefaultOptions.
type Options struct {
	// NullText is how CSV renders NULL.
	NullText string
	// Delimiter is the CSV field separator; 0 means ','.
	Delimiter rune
	// Compression wraps the encoded stream.
	Compression Compression
	// SheetName is the xlsx worksheet name; empty means "Result".
	SheetName string
	// Logger receives debug output; nil discards.
	Logger *slog.Logger
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		NullText:  "NULL",
		Delimiter: ',',
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

var (
	registryMu sync.RWMutex
	registry   = make(map[Format]Encoder)
)

// Register adds an encoder for a format, replacing any previous one.
func Register(f Format, enc Encoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[f] = enc
}

// Lookup returns the encoder for a format.
func Lookup(f Format) (Encoder, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	enc, ok := registry[f]
	return enc, ok
}

// Formats returns all registered format names (sorted).
func Formats() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for f := range registry {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(FormatJSON, EncoderFunc(EncodeJSON))
	Register(FormatCSV, EncoderFunc(EncodeCSV))
	Register(FormatXML, EncoderFunc(EncodeXML))
	Register(FormatXLSX, EncoderFunc(EncodeXLSX))
}

// ParseFormat resolves a user supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := Lookup(f); !ok {
		return "", fmt.Errorf("unknown export format %q (available: %s)", s, strings.Join(Formats(), ", "))
	}
	return f, nil
}

// FormatFromPath infers the format from a destination's extension,
// ignoring a trailing compression suffix.
func FormatFromPath(path string) (Format, bool) {
	base := strings.ToLower(filepath.Base(path))
	for _, c := range []Compression{CompressionGzip, CompressionZstd} {
		base = strings.TrimSuffix(base, c.Extension())
	}
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if ext == "" {
		return "", false
	}
	f := Format(ext)
	if _, ok := Lookup(f); !ok {
		return "", false
	}
	return f, true
}

// Export encodes m in the given format and writes it to dest.
//
// The destination only ever holds a complete file: output goes to a
// temporary file in the same directory which is renamed into place on
// success. Failures are returned as *core.ExportError.
func Export(ctx context.Context, format Format, m core.Matrix, dest string, opts Options) error {
	if m.IsEmpty() {
		return &core.ExportError{Reason: core.ExportReasonEmpty, Path: dest, Err: core.ErrEmptyResult}
	}

	enc, ok := Lookup(format)
	if !ok {
		return &core.ExportError{
			Reason: core.ExportReasonFormat,
			Path:   dest,
			Err:    fmt.Errorf("unknown format %q", format),
		}
	}

	if _, err := ParseCompression(string(opts.Compression)); err != nil {
		return &core.ExportError{Reason: core.ExportReasonFormat, Path: dest, Err: err}
	}

	path, err := ResolveDestination(dest)
	if err != nil {
		return &core.ExportError{Reason: core.ExportReasonDestination, Path: dest, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return &core.ExportError{Reason: core.ExportReasonWrite, Path: path, Err: err}
	}

	size, err := writeAtomic(path, func(w io.Writer) error {
		cw, err := opts.Compression.wrap(w)
		if err != nil {
			return err
		}
		if err := enc.Encode(cw, m, opts); err != nil {
			_ = cw.Close()
			return err
		}
		return cw.Close()
	})
	if err != nil {
		reason := core.ExportReasonWrite
		if errors.Is(err, ErrUnencodable) {
			reason = core.ExportReasonEncode
		}
		return &core.ExportError{Reason: reason, Path: path, Err: err}
	}

	opts.logger().Debug("export written",
		"format", string(format),
		"path", path,
		"rows", m.RowCount(),
		"bytes", size,
		"compression", string(opts.Compression),
	)
	return nil
}

// Target is one destination of ExportAll.
type Target struct {
	Format Format
	Path   string
	// Compression overrides Options.Compression when set.
	Compression Compression
}

// ExportAll writes the same matrix to several targets concurrently.
// It returns the first failure; targets that succeeded stay written.
func ExportAll(ctx context.Context, m core.Matrix, targets []Target, opts Options) error {
	if m.IsEmpty() {
		return &core.ExportError{Reason: core.ExportReasonEmpty, Err: core.ErrEmptyResult}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		o := opts
		if t.Compression != CompressionNone {
			o.Compression = t.Compression
		}
		g.Go(func() error {
			return Export(gctx, t.Format, m, t.Path, o)
		})
	}
	return g.Wait()
}
