package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/leapstack-labs/dbmitra/pkg/core"
)

// EncodeCSV writes the header row followed by every data row. An empty
// matrix yields core.ErrEmptyResult.
//
// Quoting follows RFC 4180 as implemented by encoding/csv. NULL is written
// as Options.NullText and numbers use the same text as the JSON encoder.
func EncodeCSV(w io.Writer, m core.Matrix, opts Options) error {
	if m.IsEmpty() {
		return core.ErrEmptyResult
	}

	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	record := make([]string, 0, len(m[0]))
	for r, row := range m {
		record = record[:0]
		for c, v := range row {
			if !core.IsScalar(v) {
				return fmt.Errorf("row %d, column %d: %w: unsupported type %T", r, c, ErrUnencodable, v)
			}
			record = append(record, core.FormatScalar(v, opts.NullText))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
