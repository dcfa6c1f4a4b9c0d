// Package dialect provides the per-engine SQL details dbmitra needs:
// identifier quoting, the introspection query used to list tables, and
// the row-limit clause used by preview queries.
//
// The built-in dialects live in builtin.go.
package dialect

import (
	"errors"
	"strconv"
	"strings"
)

// Identifier validation errors.
var (
	ErrEmptyIdentifier = errors.New("identifier is empty")
	ErrNulIdentifier   = errors.New("identifier contains a NUL byte")
)

// IdentifierConfig defines quoting rules for identifiers.
type IdentifierConfig struct {
	Quote    string // Quote character: ", `, [
	QuoteEnd string // End quote character (usually same as Quote, ] for [)
	Escape   string // Escape sequence for QuoteEnd inside a name: "", ``, ]]
}

// Dialect describes one database engine.
type Dialect struct {
	Name        string
	Identifiers IdentifierConfig

	// ListTablesQuery returns one row per user table; the first column
	// (or the column named "name") holds the table name.
	ListTablesQuery string
}

// ValidateIdentifier rejects names that cannot be quoted safely.
func ValidateIdentifier(name string) error {
	if name == "" {
		return ErrEmptyIdentifier
	}
	if strings.IndexByte(name, 0) >= 0 {
		return ErrNulIdentifier
	}
	return nil
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	// Escape any existing quote end characters in the name (e.g., ] -> ]])
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// SelectAllLimit builds "SELECT * FROM <quoted> LIMIT <n>".
func (d *Dialect) SelectAllLimit(table string, limit int) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", err
	}
	return "SELECT * FROM " + d.QuoteIdentifier(table) + " LIMIT " + strconv.Itoa(limit), nil
}

// Builder assembles a Dialect.
type Builder struct {
	d Dialect
}

// NewDialect starts a dialect definition with ANSI double-quote identifiers.
func NewDialect(name string) *Builder {
	return &Builder{d: Dialect{
		Name: name,
		Identifiers: IdentifierConfig{
			Quote:    `"`,
			QuoteEnd: `"`,
			Escape:   `""`,
		},
	}}
}

// Identifiers overrides the quoting rules.
func (b *Builder) Identifiers(quote, quoteEnd, escape string) *Builder {
	b.d.Identifiers = IdentifierConfig{Quote: quote, QuoteEnd: quoteEnd, Escape: escape}
	return b
}

// ListTables sets the introspection query.
func (b *Builder) ListTables(query string) *Builder {
	b.d.ListTablesQuery = query
	return b
}

// Build returns the finished dialect.
func (b *Builder) Build() *Dialect {
	d := b.d
	return &d
}
