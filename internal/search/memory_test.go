package search

import "testing"

func testRecords() []ActivityRecord {
	return []ActivityRecord{
		{ID: "repair-cracked-foundations", Name: "Repair cracked foundations", TypeName: "Foundation", SubCategoryName: "Structural Components", PillarID: "dwelling-safety", PillarName: "Dwelling Safety"},
		{ID: "seal-foundation-gaps", Name: "Seal foundation gaps", TypeName: "Foundation", SubCategoryName: "Structural Components", PillarID: "dwelling-safety", PillarName: "Dwelling Safety"},
		{ID: "install-ramp", Name: "Install modular ramp", TypeName: "Ramps", SubCategoryName: "Entry Access", PillarID: "accessibility", PillarName: "Accessibility", Description: "Modular aluminum ramp systems"},
	}
}

func TestMemorySearch(t *testing.T) {
	m := NewMemory(testRecords())

	results, total, err := m.Search(Query{Text: "FOUNDATION"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(results) != 2 {
		t.Fatalf("total=%d results=%d", total, len(results))
	}

	// Description text is searchable too.
	results, _, err = m.Search(Query{Text: "aluminum"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "install-ramp" {
		t.Fatalf("results = %v", results)
	}
}

func TestMemorySearchPillarFilter(t *testing.T) {
	m := NewMemory(testRecords())

	_, total, err := m.Search(Query{PillarID: "dwelling-safety"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("total = %d", total)
	}

	results, _, err := m.Search(Query{Text: "foundation", PillarID: "accessibility"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %v", results)
	}
}

func TestMemorySearchLimit(t *testing.T) {
	m := NewMemory(testRecords())

	results, total, err := m.Search(Query{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d", len(results))
	}
	if total != 3 {
		t.Fatalf("total = %d", total)
	}
}
