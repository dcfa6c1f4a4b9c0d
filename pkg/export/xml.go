package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/dbmitra/pkg/core"
)

// XML element names used by EncodeXML.
const (
	xmlRootElement = "resultset"
	xmlRowElement  = "row"
)

// ElementName turns a column name into a valid XML element name.
//
// Runes that are not allowed in a name become '_'. A name that does not
// start with a letter or '_', or that starts with the reserved "xml"
// prefix, gets a leading '_'. An empty name becomes "column_<index+1>".
// The second result reports whether the name had to change.
func ElementName(name string, index int) (string, bool) {
	if name == "" {
		return "column_" + strconv.Itoa(index+1), true
	}

	var b strings.Builder
	for i, r := range name {
		switch {
		case isNameStartRune(r):
			b.WriteRune(r)
		case isNameRune(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	if strings.HasPrefix(strings.ToLower(out), "xml") {
		out = "_" + out
	}
	return out, out != name
}

func isNameStartRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameRune(r rune) bool {
	return isNameStartRune(r) || r == '-' || r == '.' || unicode.IsDigit(r) ||
		unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}

// isXMLChar reports whether r may appear in an XML 1.0 document.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

func checkXMLText(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: text is not valid UTF-8", ErrUnencodable)
	}
	for _, r := range s {
		if !isXMLChar(r) {
			return fmt.Errorf("%w: character %U is not allowed in XML", ErrUnencodable, r)
		}
	}
	return nil
}

// EncodeXML writes one <row> per data row under a <resultset> root. Each
// cell becomes a child element named after its column; when the column
// name had to be sanitized the element keeps the original in a name
// attribute. NULL cells are empty elements with null="true".
func EncodeXML(w io.Writer, m core.Matrix, _ Options) error {
	header := m.Header()
	elems := make([]xml.StartElement, len(header))
	for i, h := range header {
		if err := checkXMLText(h); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
		name, changed := ElementName(h, i)
		elems[i] = xml.StartElement{Name: xml.Name{Local: name}}
		if changed {
			elems[i].Attr = []xml.Attr{{Name: xml.Name{Local: "name"}, Value: h}}
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: xmlRootElement}}
	rowElem := xml.StartElement{Name: xml.Name{Local: xmlRowElement}}

	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	for r, row := range m.Rows() {
		if err := enc.EncodeToken(rowElem); err != nil {
			return err
		}
		for c, v := range row {
			if c >= len(elems) {
				break
			}
			if err := encodeXMLCell(enc, elems[c], v); err != nil {
				return fmt.Errorf("row %d, column %d: %w", r+1, c, err)
			}
		}
		if err := enc.EncodeToken(rowElem.End()); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encodeXMLCell(enc *xml.Encoder, start xml.StartElement, v any) error {
	if v == nil {
		start.Attr = append(append([]xml.Attr(nil), start.Attr...),
			xml.Attr{Name: xml.Name{Local: "null"}, Value: "true"})
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		return enc.EncodeToken(start.End())
	}

	if !core.IsScalar(v) {
		return fmt.Errorf("%w: unsupported type %T", ErrUnencodable, v)
	}
	text := core.FormatScalar(v, "")
	if err := checkXMLText(text); err != nil {
		return err
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(text)); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}
