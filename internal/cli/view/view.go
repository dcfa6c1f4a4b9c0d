// Package view renders cached result sets for the terminal.
package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/leapstack-labs/dbmitra/pkg/result"
)

// Mode selects how a result set is shown.
type Mode string

// Supported view modes.
const (
	ModeGrid     Mode = "grid"
	ModeForm     Mode = "form"
	ModeJSON     Mode = "json"
	ModeMarkdown Mode = "md"
)

// Modes lists the accepted mode names.
var Modes = []string{string(ModeGrid), string(ModeForm), string(ModeJSON), string(ModeMarkdown)}

// ParseMode parses a mode name. "table" is accepted for grid and
// "markdown" for md.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "grid", "table":
		return ModeGrid, nil
	case "form":
		return ModeForm, nil
	case "json":
		return ModeJSON, nil
	case "md", "markdown":
		return ModeMarkdown, nil
	}
	return "", fmt.Errorf("unknown view %q (expected one of %s)", s, strings.Join(Modes, ", "))
}

// Options tunes rendering.
type Options struct {
	// NullText replaces NULL cells in grid, form and markdown views.
	NullText string
	// All shows every record in the form and json views instead of the first.
	All bool
}

// Render writes set to w in the given mode.
func Render(w io.Writer, mode Mode, set *result.Set, opts Options) error {
	switch mode {
	case ModeForm:
		return RenderForm(w, set, opts)
	case ModeJSON:
		return RenderJSON(w, set, opts)
	case ModeMarkdown:
		return RenderMarkdown(w, set, opts)
	default:
		return RenderGrid(w, set, opts)
	}
}

// RenderGrid draws every record as a table followed by a row count.
func RenderGrid(w io.Writer, set *result.Set, opts Options) error {
	if set.RowCount() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := newTable(w, set, opts)
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", set.RowCount())
	return nil
}

// RenderMarkdown writes every record as a markdown table.
func RenderMarkdown(w io.Writer, set *result.Set, opts Options) error {
	if set.RowCount() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := newTable(w, set, opts)
	t.RenderMarkdown()
	_, _ = fmt.Fprintln(w)
	return nil
}

func newTable(w io.Writer, set *result.Set, opts Options) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(set.Columns))
	for i, col := range set.Columns {
		headerRow[i] = col.Name
	}
	t.AppendHeader(headerRow)

	for _, rec := range set.Records {
		row := make(table.Row, len(set.Columns))
		for i := range set.Columns {
			if v, ok := rec.At(i); ok {
				row[i] = core.FormatScalar(v, opts.NullText)
			} else {
				row[i] = ""
			}
		}
		t.AppendRow(row)
	}
	return t
}

// RenderForm shows a record as column/value pairs. Only the first record
// is shown unless opts.All is set.
func RenderForm(w io.Writer, set *result.Set, opts Options) error {
	if set.RowCount() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	records := set.Records[:1]
	if opts.All {
		records = set.Records
	}

	for n, rec := range records {
		if opts.All {
			if n > 0 {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "-[ RECORD %d ]-\n", rec.Position+1)
		}

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Column", "Value"})
		for i, col := range set.Columns {
			v, ok := rec.At(i)
			value := ""
			if ok {
				value = core.FormatScalar(v, opts.NullText)
			}
			t.AppendRow(table.Row{col.Name, value})
		}
		t.Render()
	}
	return nil
}

// RenderJSON writes a record as an indented JSON object keyed by column,
// keys in column order. With opts.All every record is written inside an
// array. An empty set renders as null, or [] with opts.All.
func RenderJSON(w io.Writer, set *result.Set, opts Options) error {
	if !opts.All {
		rec, ok := set.First()
		if !ok {
			_, err := io.WriteString(w, "null\n")
			return err
		}
		b, err := recordJSON(set, rec, "")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}

	var buf bytes.Buffer
	if set.RowCount() == 0 {
		buf.WriteString("[]\n")
	} else {
		buf.WriteString("[\n")
		for i, rec := range set.Records {
			b, err := recordJSON(set, rec, "  ")
			if err != nil {
				return err
			}
			buf.WriteString("  ")
			buf.Write(b)
			if i < len(set.Records)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString("]\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// recordJSON encodes one record. Duplicate column names keep the field
// value, which is the last one.
func recordJSON(set *result.Set, rec core.Record, prefix string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")

	seen := make(map[string]bool, len(set.Columns))
	first := true
	for _, col := range set.Columns {
		if seen[col.Name] {
			continue
		}
		seen[col.Name] = true

		v, ok := rec.Get(col.Name)
		if !ok {
			continue
		}
		key, err := json.Marshal(col.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(jsonValue(v))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString("\n" + prefix + "  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
	}

	if !first {
		buf.WriteString("\n" + prefix)
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}

// jsonValue maps values JSON cannot carry to their text form.
func jsonValue(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return core.FormatFloat(f)
	}
	return v
}
