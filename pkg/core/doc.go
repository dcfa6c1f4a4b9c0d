// Package core defines the shared language of dbmitra.
//
// This package contains:
//   - Result shapes (Matrix, Column, Record)
//   - The error taxonomy (OpenError, QueryError, ExportError)
//   - Canonical scalar handling shared by the gateway and the encoders
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
