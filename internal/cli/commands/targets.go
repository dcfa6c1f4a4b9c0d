package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/dbmitra/pkg/export"
)

// buildTargets turns --out paths into export targets. The format comes
// from --format when given, else from each path's extension; a .gz or
// .zst suffix selects compression.
func buildTargets(outs []string, format string) ([]export.Target, error) {
	if len(outs) == 0 {
		return nil, errors.New("no destination given (use --out)")
	}

	var forced export.Format
	if format != "" {
		f, err := export.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		forced = f
	}

	targets := make([]export.Target, 0, len(outs))
	for _, out := range outs {
		f := forced
		if f == "" {
			var ok bool
			f, ok = export.FormatFromPath(out)
			if !ok {
				return nil, fmt.Errorf("cannot infer export format from %q; use --format", out)
			}
		}
		targets = append(targets, export.Target{
			Format:      f,
			Path:        out,
			Compression: export.CompressionFromPath(out),
		})
	}
	return targets, nil
}
