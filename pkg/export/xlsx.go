package export

import (
	"fmt"
	"io"
	"math"

	"github.com/leapstack-labs/dbmitra/pkg/core"
	"github.com/xuri/excelize/v2"
)

// defaultSheetName is used when Options.SheetName is empty.
const defaultSheetName = "Result"

// EncodeXLSX writes m to a single worksheet: a bold header row followed by
// the data rows. Numbers and booleans keep their native cell types and
// NULL cells are left empty.
func EncodeXLSX(w io.Writer, m core.Matrix, opts Options) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := opts.SheetName
	if sheet == "" {
		sheet = defaultSheetName
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("%w: sheet name %q: %v", ErrUnencodable, sheet, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	for r, row := range m {
		cells := make([]interface{}, len(row))
		for c, v := range row {
			cv, err := xlsxValue(v)
			if err != nil {
				return fmt.Errorf("row %d, column %d: %w", r, c, err)
			}
			if r == 0 {
				cells[c] = excelize.Cell{StyleID: headerStyle, Value: cv}
				continue
			}
			cells[c] = cv
		}

		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnencodable, err)
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrUnencodable, r, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush worksheet: %w", err)
	}
	return f.Write(w)
}

func xlsxValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, int64:
		return x, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: %v is not representable in a spreadsheet", ErrUnencodable, x)
		}
		return x, nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrUnencodable, v)
	}
}
