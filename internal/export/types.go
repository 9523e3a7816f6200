// Package export turns the catalog's decisions into downloadable artifacts:
// CSV, a print-ready HTML report, a server-rendered PDF, and the
// Word-compatible manual document.
package export

import "errors"

// Format represents the export output format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatPrint Format = "print"
	FormatPDF   Format = "pdf"
	FormatImage Format = "image"
	FormatWord  Format = "word"
)

// Levels selects which ancestor levels appear in the output. The activity
// level is always included and cannot be disabled.
type Levels struct {
	Pillar      bool `json:"pillar"`
	SubCategory bool `json:"subCategory"`
	Type        bool `json:"type"`
}

// Elements selects which optional data elements appear in the output.
type Elements struct {
	Definitions bool `json:"definitions"`
	Criticality bool `json:"criticality"`
	Notes       bool `json:"notes"`
}

// Request contains parameters for an export operation. Exports always cover
// the full taxonomy's decisions, never the currently filtered view.
type Request struct {
	Format   Format
	Levels   Levels
	Elements Elements
}

// AllLevels includes every hierarchy level.
func AllLevels() Levels { return Levels{Pillar: true, SubCategory: true, Type: true} }

// AllElements includes every optional data element.
func AllElements() Elements { return Elements{Definitions: true, Criticality: true, Notes: true} }

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrUnsupportedFormat indicates the requested format has no renderer.
	// Callers must surface this to the user rather than fail silently.
	ErrUnsupportedFormat = errors.New("export format not supported, use print or pdf")
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
)
