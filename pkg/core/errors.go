package core

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNotConnected is returned when a query is issued before a database is open.
	ErrNotConnected = errors.New("no database connected")

	// ErrEmptyResult is returned when there is nothing to export.
	ErrEmptyResult = errors.New("nothing to export: result set is empty")
)

// OpenError is returned when a database file cannot be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// QueryError is returned when the database rejects or fails a query.
// The driver message is kept as-is.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ExportReason classifies export failures.
type ExportReason string

// Export failure reasons.
const (
	ExportReasonEmpty       ExportReason = "empty result"
	ExportReasonDestination ExportReason = "invalid destination"
	ExportReasonFormat      ExportReason = "unsupported format"
	ExportReasonEncode      ExportReason = "encode failed"
	ExportReasonWrite       ExportReason = "write failed"
)

// ExportError is returned when a result set cannot be exported.
type ExportError struct {
	Reason ExportReason
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	msg := "export"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + string(e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExportError) Unwrap() error { return e.Err }

// IsExportReason reports whether err is an ExportError with the given reason.
func IsExportReason(err error, reason ExportReason) bool {
	var ee *ExportError
	return errors.As(err, &ee) && ee.Reason == reason
}
