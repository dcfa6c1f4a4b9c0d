package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/dbmitra/pkg/core"
)

// EncodeJSON writes m as an array of arrays, one line per row, header row
// first. Rows are written exactly as held, without padding.
//
// Floats always carry a fraction or exponent so DecodeJSON can tell them
// apart from integers; NaN and infinities cannot be encoded.
func EncodeJSON(w io.Writer, m core.Matrix, _ Options) error {
	var buf bytes.Buffer
	if _, err := io.WriteString(w, "[\n"); err != nil {
		return err
	}
	for r, row := range m {
		buf.Reset()
		buf.WriteString("  [")
		for c, v := range row {
			if c > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSONValue(&buf, v); err != nil {
				return fmt.Errorf("row %d, column %d: %w", r, c, err)
			}
		}
		buf.WriteByte(']')
		if r < len(m)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]\n")
	return err
}

func appendJSONValue(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case int64:
		buf.WriteString(strconv.FormatInt(x, 10))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %v is not representable in JSON", ErrUnencodable, x)
		}
		buf.WriteString(core.FormatFloat(x))
	case string:
		if !utf8.ValidString(x) {
			return fmt.Errorf("%w: text is not valid UTF-8", ErrUnencodable)
		}
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnencodable, err)
		}
		buf.Write(b)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrUnencodable, v)
	}
	return nil
}

// DecodeJSON parses output of EncodeJSON back into a matrix. Integral
// numbers become int64, other numbers float64.
func DecodeJSON(r io.Reader) (core.Matrix, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw [][]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON export: %w", err)
	}

	m := make(core.Matrix, len(raw))
	for i, row := range raw {
		out := make([]any, len(row))
		for j, v := range row {
			cv, err := fromJSONValue(v)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d: %w", i, j, err)
			}
			out[j] = cv
		}
		m[i] = out
	}
	return m, nil
}

func fromJSONValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool:
		return x, nil
	case json.Number:
		s := x.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unexpected JSON value of type %T", v)
	}
}
