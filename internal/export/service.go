package export

import (
	"fmt"
	"time"

	"catalog/api/internal/selection"
	"catalog/api/internal/taxonomy"
)

// Service produces export artifacts from the taxonomy and the current
// selection decisions.
type Service struct {
	tax  *taxonomy.Taxonomy
	sels *selection.Store
	now  func() time.Time
}

// NewService creates a new export service
func NewService(tax *taxonomy.Taxonomy, sels *selection.Store) *Service {
	return &Service{tax: tax, sels: sels, now: time.Now}
}

// Export generates an export in the requested format
func (s *Service) Export(req Request) (*Result, error) {
	switch req.Format {
	case FormatCSV:
		return s.exportCSV(req), nil
	case FormatPrint:
		html, err := s.renderReport(req)
		if err != nil {
			return nil, fmt.Errorf("render report: %w", err)
		}
		return &Result{
			Data:     []byte(html),
			Filename: fmt.Sprintf("eligible-activities-%s.html", s.now().Format("2006-01-02")),
			MimeType: "text/html; charset=utf-8",
		}, nil
	case FormatPDF:
		html, err := s.renderReport(req)
		if err != nil {
			return nil, fmt.Errorf("render report: %w", err)
		}
		return exportPDF(html, fmt.Sprintf("eligible-activities-%s", s.now().Format("2006-01-02")))
	case FormatImage:
		// No image renderer exists. The caller must show this outcome to
		// the user rather than fail silently.
		return nil, fmt.Errorf("%w: image rendering is not available", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, req.Format)
	}
}
