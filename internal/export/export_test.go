package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"catalog/api/internal/kv"
	"catalog/api/internal/manual"
	"catalog/api/internal/selection"
	"catalog/api/internal/taxonomy"
)

const fixtureYAML = `
pillars:
  - id: dwelling-safety
    name: Dwelling Safety
    description: Hazards that make a home unsafe.
    subCategories:
      - id: structural
        name: Structural Components
        description: Load-bearing elements.
        types:
          - id: foundation
            name: Foundation
            description: Footings and foundation walls.
            activities:
              - id: repair-cracked-foundations
                name: Repair cracked foundations
                defaultUrgency: Critical
                defaultCondition: Active
              - id: seal-foundation-gaps
                name: Seal foundation gaps
                defaultUrgency: Non-Critical
                defaultCondition: Passive
  - id: community
    name: Community Strengthening
    description: Work beyond the individual dwelling.
    subCategories:
      - id: shared-spaces
        name: Shared Spaces
        description: Common areas.
        types:
          - id: cleanup
            name: Cleanup
            activities:
              - id: lot-cleanup
                name: Vacant lot cleanup
                defaultUrgency: N/A
                defaultCondition: N/A
`

func newTestService(t *testing.T) (*Service, *selection.Store) {
	t.Helper()
	tax, err := taxonomy.Parse([]byte(fixtureYAML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	sels := selection.NewStore(kv.NewMemory(), kv.KeySelections)
	svc := NewService(tax, sels)
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)
	}
	return svc, sels
}

func fullRequest(format Format) Request {
	return Request{Format: format, Levels: AllLevels(), Elements: AllElements()}
}

func TestExportCSVFullColumns(t *testing.T) {
	svc, sels := newTestService(t)
	ctx := context.Background()
	if _, err := sels.ToggleStatus(ctx, "repair-cracked-foundations", selection.StatusEligible); err != nil {
		t.Fatal(err)
	}
	if _, err := sels.SetNotes(ctx, "repair-cracked-foundations", "done in phase 1"); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Export(fullRequest(FormatCSV))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Filename != "eligible-activities-2026-03-14.csv" {
		t.Errorf("filename = %q", result.Filename)
	}
	if result.MimeType != "text/csv; charset=utf-8" {
		t.Errorf("mime type = %q", result.MimeType)
	}

	lines := strings.Split(strings.TrimRight(string(result.Data), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}

	wantHeader := `"Pillar","Sub-Category","Type","Activity","Status","Priority","Urgency","Condition","Pillar Definition","Sub-Category Definition","Type Definition","Notes"`
	if lines[0] != wantHeader {
		t.Errorf("header:\n got %s\nwant %s", lines[0], wantHeader)
	}

	wantRow := `"Dwelling Safety","Structural Components","Foundation","Repair cracked foundations","ELIGIBLE","Priority 1","Critical","Active","Hazards that make a home unsafe.","Load-bearing elements.","Footings and foundation walls.","done in phase 1"`
	if lines[1] != wantRow {
		t.Errorf("row:\n got %s\nwant %s", lines[1], wantRow)
	}
}

func TestExportCSVOverrideResolution(t *testing.T) {
	svc, sels := newTestService(t)
	ctx := context.Background()
	if _, err := sels.ToggleStatus(ctx, "repair-cracked-foundations", selection.StatusEligible); err != nil {
		t.Fatal(err)
	}
	// Default urgency is Critical; the override must flow into the urgency
	// column and the recomputed priority, never the default.
	if _, err := sels.SetOverrides(ctx, "repair-cracked-foundations", taxonomy.UrgencyNonCritical, ""); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Export(fullRequest(FormatCSV))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(string(result.Data), "\n")
	if !strings.Contains(lines[1], `"ELIGIBLE","Priority 4","Non-Critical","Active"`) {
		t.Errorf("override not resolved in row: %s", lines[1])
	}
}

func TestReportKeepsSameNamedGroupsApart(t *testing.T) {
	const yaml = `
pillars:
  - id: dwelling-safety
    name: Safety
    subCategories:
      - id: structural
        name: Components
        types:
          - id: foundation
            name: Foundation
            activities:
              - id: repair-foundations
                name: Repair foundations
                defaultUrgency: Critical
                defaultCondition: Active
      - id: systems
        name: Components
        types:
          - id: electrical
            name: Electrical
            activities:
              - id: rewire-panel
                name: Rewire panel
                defaultUrgency: Critical
                defaultCondition: Active
  - id: site-safety
    name: Safety
    subCategories:
      - id: drainage
        name: Drainage
        types:
          - id: grading
            name: Grading
            activities:
              - id: regrade-lot
                name: Regrade lot
                defaultUrgency: Emergent
                defaultCondition: Active
`
	tax, err := taxonomy.Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	sels := selection.NewStore(kv.NewMemory(), kv.KeySelections)
	svc := NewService(tax, sels)
	ctx := context.Background()
	for _, id := range []string{"repair-foundations", "rewire-panel", "regrade-lot"} {
		if _, err := sels.ToggleStatus(ctx, id, selection.StatusEligible); err != nil {
			t.Fatal(err)
		}
	}

	pillars := svc.sectionPillars(selection.StatusEligible, fullRequest(FormatPrint))
	if len(pillars) != 2 {
		t.Fatalf("expected 2 pillars, got %d", len(pillars))
	}
	if pillars[0].Name != "Safety" || pillars[1].Name != "Safety" {
		t.Fatalf("pillar names = %q, %q", pillars[0].Name, pillars[1].Name)
	}
	if len(pillars[0].Groups) != 2 {
		t.Errorf("expected the same-named sub-categories to stay separate, got %d groups", len(pillars[0].Groups))
	}
	if len(pillars[0].Groups) == 2 && pillars[0].Groups[0].Name != pillars[0].Groups[1].Name {
		t.Errorf("fixture groups should share a name, got %q and %q",
			pillars[0].Groups[0].Name, pillars[0].Groups[1].Name)
	}
}

func TestExportCSVUnselectedAndNA(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Export(fullRequest(FormatCSV))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(result.Data), "\n"), "\n")

	// Nothing is selected, so every row carries the UNSELECTED literal.
	for _, line := range lines[1:] {
		if !strings.Contains(line, `"UNSELECTED"`) {
			t.Errorf("row missing UNSELECTED literal: %s", line)
		}
	}
	// The N/A activity has no priority but keeps its urgency and condition.
	naRow := lines[3]
	if !strings.Contains(naRow, `"Vacant lot cleanup","UNSELECTED","","N/A","N/A"`) {
		t.Errorf("N/A row = %s", naRow)
	}
}

func TestExportCSVStatusLiteral(t *testing.T) {
	svc, sels := newTestService(t)
	if _, err := sels.ToggleStatus(context.Background(), "seal-foundation-gaps", selection.StatusNotEligible); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Export(Request{Format: FormatCSV, Levels: AllLevels()})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(result.Data), `"Seal foundation gaps","NOT ELIGIBLE"`) {
		t.Errorf("not_eligible not rendered:\n%s", result.Data)
	}
}

func TestExportCSVQuoteDoubling(t *testing.T) {
	svc, sels := newTestService(t)
	if _, err := sels.SetNotes(context.Background(), "repair-cracked-foundations", `use "type S" mortar`); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Export(fullRequest(FormatCSV))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(result.Data), `"use ""type S"" mortar"`) {
		t.Errorf("embedded quotes not doubled:\n%s", result.Data)
	}
}

func TestExportCSVLevelSubset(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Export(Request{Format: FormatCSV, Levels: Levels{Pillar: true}})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(string(result.Data), "\n")
	if lines[0] != `"Pillar","Activity","Status"` {
		t.Errorf("header = %s", lines[0])
	}
}

func TestExportPrintReport(t *testing.T) {
	svc, sels := newTestService(t)
	ctx := context.Background()
	if _, err := sels.ToggleStatus(ctx, "repair-cracked-foundations", selection.StatusEligible); err != nil {
		t.Fatal(err)
	}
	if _, err := sels.SetNotes(ctx, "repair-cracked-foundations", "coordinate with inspector"); err != nil {
		t.Fatal(err)
	}
	if _, err := sels.ToggleStatus(ctx, "lot-cleanup", selection.StatusEligible); err != nil {
		t.Fatal(err)
	}

	result, err := svc.Export(fullRequest(FormatPrint))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Filename != "eligible-activities-2026-03-14.html" {
		t.Errorf("filename = %q", result.Filename)
	}
	if result.MimeType != "text/html; charset=utf-8" {
		t.Errorf("mime type = %q", result.MimeType)
	}

	html := string(result.Data)
	for _, want := range []string{
		"Eligible Construction Activities",
		"Repair cracked foundations",
		"[Foundation]",
		"Priority 1",
		"coordinate with inspector",
		// Eligible even when N/A: listed, just without a priority badge.
		"Vacant lot cleanup",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
	// Unselected activities never appear in the report.
	if strings.Contains(html, "Seal foundation gaps") {
		t.Error("unselected activity leaked into report")
	}
}

func TestExportPrintOmitsNABadge(t *testing.T) {
	svc, sels := newTestService(t)
	if _, err := sels.ToggleStatus(context.Background(), "lot-cleanup", selection.StatusEligible); err != nil {
		t.Fatal(err)
	}

	html, err := svc.renderReport(fullRequest(FormatPrint))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// The only selected activity is fully N/A, so no priority label renders.
	if strings.Contains(html, "Priority ") {
		t.Errorf("N/A activity rendered a priority badge:\n%s", html)
	}
}

func TestExportImageUnsupported(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Export(fullRequest(FormatImage))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v", err)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Export(Request{Format: "xlsx", Levels: AllLevels()})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v", err)
	}
}

func TestExportManualDoc(t *testing.T) {
	doc := manual.Default()
	doc.OrgName = "River Valley Partners"

	result, err := ExportManualDoc(doc)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Filename != "Repair_Manual_River_Valley_Partners_Draft.doc" {
		t.Errorf("filename = %q", result.Filename)
	}
	if result.MimeType != "application/msword" {
		t.Errorf("mime type = %q", result.MimeType)
	}
	if !bytes.HasPrefix(result.Data, []byte("\uFEFF")) {
		t.Error("document missing BOM prefix")
	}
	if !bytes.Contains(result.Data, []byte("River Valley Partners")) {
		t.Error("document missing organization name")
	}
	if !bytes.Contains(result.Data, []byte("urn:schemas-microsoft-com:office:word")) {
		t.Error("document missing office namespace")
	}
}

func TestExportManualDocEmptyOrg(t *testing.T) {
	result, err := ExportManualDoc(manual.Data{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Filename != "Repair_Manual_Draft.doc" {
		t.Errorf("filename = %q", result.Filename)
	}
}
