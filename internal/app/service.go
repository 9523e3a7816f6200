// Package app wires the catalog's domain packages behind one service and
// exposes them over HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"catalog/api/internal/archive"
	"catalog/api/internal/catalog"
	"catalog/api/internal/export"
	"catalog/api/internal/gitrepo"
	"catalog/api/internal/kv"
	"catalog/api/internal/manual"
	"catalog/api/internal/search"
	"catalog/api/internal/selection"
	"catalog/api/internal/taxonomy"
)

// Service holds the application state: the immutable taxonomy plus the
// mutable selection and manual stores, and the optional side services.
type Service struct {
	tax     *taxonomy.Taxonomy
	backend kv.Store

	selections *selection.Store
	manual     *manual.Store
	exports    *export.Service
	search     *search.Service

	// Optional; nil when not configured.
	archive *archive.Service
	drafts  *gitrepo.Service
}

func New(tax *taxonomy.Taxonomy, backend kv.Store, searchService *search.Service) *Service {
	selections := selection.NewStore(backend, kv.KeySelections)
	return &Service{
		tax:        tax,
		backend:    backend,
		selections: selections,
		manual:     manual.NewStore(backend, kv.KeyManual),
		exports:    export.NewService(tax, selections),
		search:     searchService,
	}
}

// Bootstrap loads persisted state and indexes the taxonomy for search.
// Corrupt persisted state never fails startup; it is discarded with a
// diagnostic inside the stores.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.selections.Load(ctx); err != nil {
		return fmt.Errorf("load selections: %w", err)
	}
	if err := s.manual.Load(ctx); err != nil {
		return fmt.Errorf("load manual: %w", err)
	}
	if s.search != nil {
		s.search.Reindex(search.Records(s.tax))
	}
	if s.drafts != nil {
		if err := s.drafts.EnsureRepo(s.manual.Get(), "catalog"); err != nil {
			log.Printf("app: draft history unavailable: %v", err)
			s.drafts = nil
		}
	}
	return nil
}

// WithArchive enables artifact archiving.
func (s *Service) WithArchive(a *archive.Service) *Service {
	s.archive = a
	return s
}

// WithDrafts enables the manual draft history.
func (s *Service) WithDrafts(d *gitrepo.Service) *Service {
	s.drafts = d
	return s
}

// Ping checks the KV backend.
func (s *Service) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Taxonomy returns the tree filtered by the query, with level counts against
// the full tree.
func (s *Service) Taxonomy(q catalog.Query) (*taxonomy.Taxonomy, catalog.LevelCounts) {
	filtered := catalog.Filter(s.tax, s.selections, q)
	return filtered, catalog.CountLevels(filtered, s.tax)
}

// Flat returns the flattened activity rows.
func (s *Service) Flat() []taxonomy.FlatActivity {
	return s.tax.Flatten()
}

// Selections returns all current selection records.
func (s *Service) Selections() map[string]selection.Selection {
	return s.selections.All()
}

// ToggleStatus sets or clears an activity's status.
func (s *Service) ToggleStatus(ctx context.Context, activityID string, status selection.Status) (selection.Selection, error) {
	if _, ok := s.tax.ActivityByID(activityID); !ok {
		return selection.Selection{}, domainError(http.StatusNotFound, "ACTIVITY_NOT_FOUND", "Activity not found", nil)
	}
	sel, err := s.selections.ToggleStatus(ctx, activityID, status)
	if err != nil {
		return selection.Selection{}, mapSelectionErr(err)
	}
	return sel, nil
}

// SetOverrides replaces an activity's urgency/condition overrides. Empty
// values clear the override back to the default.
func (s *Service) SetOverrides(ctx context.Context, activityID string, urgency taxonomy.Urgency, condition taxonomy.Condition) (selection.Selection, error) {
	if _, ok := s.tax.ActivityByID(activityID); !ok {
		return selection.Selection{}, domainError(http.StatusNotFound, "ACTIVITY_NOT_FOUND", "Activity not found", nil)
	}
	sel, err := s.selections.SetOverrides(ctx, activityID, urgency, condition)
	if err != nil {
		return selection.Selection{}, mapSelectionErr(err)
	}
	return sel, nil
}

// SetNotes replaces an activity's free-text note.
func (s *Service) SetNotes(ctx context.Context, activityID, notes string) (selection.Selection, error) {
	if _, ok := s.tax.ActivityByID(activityID); !ok {
		return selection.Selection{}, domainError(http.StatusNotFound, "ACTIVITY_NOT_FOUND", "Activity not found", nil)
	}
	sel, err := s.selections.SetNotes(ctx, activityID, notes)
	if err != nil {
		return selection.Selection{}, mapSelectionErr(err)
	}
	return sel, nil
}

// ClearSelection removes an activity's selection record entirely.
func (s *Service) ClearSelection(ctx context.Context, activityID string) error {
	if _, ok := s.tax.ActivityByID(activityID); !ok {
		return domainError(http.StatusNotFound, "ACTIVITY_NOT_FOUND", "Activity not found", nil)
	}
	if _, err := s.selections.Clear(ctx, activityID); err != nil {
		return mapSelectionErr(err)
	}
	return nil
}

// Stats recomputes the status counts over the full taxonomy and the level
// counts for the given filter.
func (s *Service) Stats(q catalog.Query) (catalog.StatusCounts, catalog.LevelCounts) {
	filtered := catalog.Filter(s.tax, s.selections, q)
	return catalog.Stats(s.tax, s.selections), catalog.CountLevels(filtered, s.tax)
}

// Export produces a catalog artifact and archives it when archiving is
// configured.
func (s *Service) Export(req export.Request) (*export.Result, error) {
	result, err := s.exports.Export(req)
	if err != nil {
		return nil, mapExportErr(err)
	}
	s.archive.Store(result)
	return result, nil
}

// Manual returns the current wizard document.
func (s *Service) Manual() manual.Data {
	return s.manual.Get()
}

// UpdateManual replaces the wizard document.
func (s *Service) UpdateManual(ctx context.Context, data manual.Data) (manual.Data, error) {
	updated, err := s.manual.Update(ctx, data)
	if err != nil {
		return manual.Data{}, domainError(http.StatusServiceUnavailable, "PERSIST_FAILED", "Could not persist manual", nil)
	}
	return updated, nil
}

// ManualSteps evaluates the advisory step completeness checks.
func (s *Service) ManualSteps() []manual.StepStatus {
	return manual.StepStatuses(s.manual.Get())
}

// ExportManual renders the Word-compatible manual document, archives it and
// commits it to the draft history when those are configured.
func (s *Service) ExportManual() (*export.Result, error) {
	data := s.manual.Get()
	result, err := export.ExportManualDoc(data)
	if err != nil {
		return nil, mapExportErr(err)
	}
	s.archive.Store(result)
	if s.drafts != nil {
		if _, err := s.drafts.Commit(data, result.Data, "catalog", "Export manual draft"); err != nil {
			log.Printf("app: draft commit failed: %v", err)
		}
	}
	return result, nil
}

// ManualHistory lists the draft history, newest first.
func (s *Service) ManualHistory(limit int) ([]gitrepo.CommitInfo, error) {
	if s.drafts == nil {
		return []gitrepo.CommitInfo{}, nil
	}
	items, err := s.drafts.History(limit)
	if err != nil {
		return nil, fmt.Errorf("draft history: %w", err)
	}
	return items, nil
}

// Search runs the advisory free-text activity search.
func (s *Service) Search(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}
	return s.search.Search(q)
}

func mapSelectionErr(err error) error {
	switch {
	case errors.Is(err, selection.ErrInvalidStatus):
		return domainError(http.StatusUnprocessableEntity, "INVALID_STATUS", "Unknown selection status", nil)
	case errors.Is(err, selection.ErrInvalidOverride):
		return domainError(http.StatusUnprocessableEntity, "INVALID_OVERRIDE", "Unknown urgency or condition value", nil)
	default:
		return fmt.Errorf("selection store: %w", err)
	}
}

func mapExportErr(err error) error {
	switch {
	case errors.Is(err, export.ErrUnsupportedFormat):
		return domainError(http.StatusUnprocessableEntity, "UNSUPPORTED_FORMAT", err.Error(), nil)
	case errors.Is(err, export.ErrPDFDependencyMissing):
		return domainError(http.StatusServiceUnavailable, "PDF_UNAVAILABLE", "PDF rendering is not available on this host", nil)
	default:
		return fmt.Errorf("export: %w", err)
	}
}
