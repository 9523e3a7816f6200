package catalog

import (
	"context"
	"testing"

	"catalog/api/internal/kv"
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
          - id: roof
            name: Roof Framing
            description: Rafters and trusses.
            activities:
              - id: sister-rafters
                name: Sister damaged rafters
                defaultUrgency: Emergent
                defaultCondition: Passive
  - id: accessibility
    name: Accessibility
    description: Modifications for safe entry and use.
    subCategories:
      - id: entry
        name: Entry Access
        description: Getting in and out of the home.
        types:
          - id: ramps
            name: Ramps
            activities:
              - id: install-ramp
                name: Install modular ramp
                defaultUrgency: Non-Critical
                defaultCondition: Inactive
`

func fixture(t *testing.T) (*taxonomy.Taxonomy, *selection.Store) {
	t.Helper()
	tax, err := taxonomy.Parse([]byte(fixtureYAML))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return tax, selection.NewStore(kv.NewMemory(), kv.KeySelections)
}

func activityIDs(tax *taxonomy.Taxonomy) []string {
	ids := make([]string, 0)
	for _, row := range tax.Flatten() {
		ids = append(ids, row.Activity.ID)
	}
	return ids
}

func TestEmptyQueryReturnsFullTree(t *testing.T) {
	tax, sels := fixture(t)
	filtered := Filter(tax, sels, Query{})
	if filtered != tax {
		t.Fatal("empty query must return the taxonomy unchanged")
	}
}

func TestTextFilterMatchesActivityAndTypeNames(t *testing.T) {
	tax, sels := fixture(t)

	filtered := Filter(tax, sels, Query{Text: "foundation"})
	ids := activityIDs(filtered)
	// Matches both foundation activities via name and type name; rafters and
	// ramp have no match at any level.
	if len(ids) != 2 {
		t.Fatalf("ids = %v", ids)
	}
	for _, row := range filtered.Flatten() {
		if row.TypeName != "Foundation" {
			t.Errorf("unsound row retained: %s under %s", row.Activity.ID, row.TypeName)
		}
	}

	// Case-insensitive.
	if got := activityIDs(Filter(tax, sels, Query{Text: "RAMP"})); len(got) != 1 || got[0] != "install-ramp" {
		t.Fatalf("case-insensitive match failed: %v", got)
	}
}

func TestFilterPrunesEmptyBranches(t *testing.T) {
	tax, sels := fixture(t)
	filtered := Filter(tax, sels, Query{Text: "rafters"})

	if len(filtered.Pillars) != 1 || filtered.Pillars[0].ID != "dwelling-safety" {
		t.Fatalf("pillars = %+v", filtered.Pillars)
	}
	sub := filtered.Pillars[0].SubCategories
	if len(sub) != 1 || len(sub[0].Types) != 1 || sub[0].Types[0].ID != "roof" {
		t.Fatalf("branches not pruned: %+v", sub)
	}
}

func TestFilterIsMonotone(t *testing.T) {
	tax, sels := fixture(t)
	if _, err := sels.ToggleStatus(context.Background(), "repair-cracked-foundations", selection.StatusEligible); err != nil {
		t.Fatal(err)
	}

	loose := activityIDs(Filter(tax, sels, Query{Text: "foundation"}))
	tight := activityIDs(Filter(tax, sels, Query{Text: "foundation", Status: selection.StatusEligible}))

	if len(tight) > len(loose) {
		t.Fatalf("adding a predicate grew the result: %d > %d", len(tight), len(loose))
	}
	looseSet := map[string]bool{}
	for _, id := range loose {
		looseSet[id] = true
	}
	for _, id := range tight {
		if !looseSet[id] {
			t.Errorf("tightened result contains %s absent from looser result", id)
		}
	}
	if len(tight) != 1 || tight[0] != "repair-cracked-foundations" {
		t.Fatalf("tight = %v", tight)
	}
}

func TestStatusFilterUnselected(t *testing.T) {
	tax, sels := fixture(t)
	ctx := context.Background()
	if _, err := sels.ToggleStatus(ctx, "repair-cracked-foundations", selection.StatusEligible); err != nil {
		t.Fatal(err)
	}
	// A record whose status was toggled away counts as unselected again.
	if _, err := sels.ToggleStatus(ctx, "sister-rafters", selection.StatusNA); err != nil {
		t.Fatal(err)
	}
	if _, err := sels.ToggleStatus(ctx, "sister-rafters", selection.StatusNA); err != nil {
		t.Fatal(err)
	}

	ids := activityIDs(Filter(tax, sels, Query{Status: StatusUnselectedFilter}))
	if len(ids) != 3 {
		t.Fatalf("unselected ids = %v", ids)
	}
	for _, id := range ids {
		if id == "repair-cracked-foundations" {
			t.Error("eligible activity leaked into unselected filter")
		}
	}

	// And an explicit status filter excludes unselected activities.
	ids = activityIDs(Filter(tax, sels, Query{Status: selection.StatusEligible}))
	if len(ids) != 1 || ids[0] != "repair-cracked-foundations" {
		t.Fatalf("eligible ids = %v", ids)
	}
}

func TestCriticalOnlyUsesEffectiveUrgency(t *testing.T) {
	tax, sels := fixture(t)
	ctx := context.Background()

	ids := activityIDs(Filter(tax, sels, Query{CriticalOnly: true}))
	if len(ids) != 1 || ids[0] != "repair-cracked-foundations" {
		t.Fatalf("default critical ids = %v", ids)
	}

	// Overriding urgency moves activities in and out of the set.
	if _, err := sels.SetOverrides(ctx, "install-ramp", taxonomy.UrgencyCritical, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := sels.SetOverrides(ctx, "repair-cracked-foundations", taxonomy.UrgencyNonCritical, ""); err != nil {
		t.Fatal(err)
	}
	ids = activityIDs(Filter(tax, sels, Query{CriticalOnly: true}))
	if len(ids) != 1 || ids[0] != "install-ramp" {
		t.Fatalf("overridden critical ids = %v", ids)
	}
}

func TestStatsConservation(t *testing.T) {
	tax, sels := fixture(t)
	ctx := context.Background()

	check := func() {
		t.Helper()
		counts := Stats(tax, sels)
		sum := counts.Eligible + counts.NotEligible + counts.Conditional + counts.NA + counts.Unselected
		if sum != counts.Total || counts.Total != tax.ActivityCount() {
			t.Fatalf("buckets %d do not sum to total %d (activities %d)", sum, counts.Total, tax.ActivityCount())
		}
	}

	check()
	if _, err := sels.ToggleStatus(ctx, "repair-cracked-foundations", selection.StatusEligible); err != nil {
		t.Fatal(err)
	}
	if _, err := sels.ToggleStatus(ctx, "install-ramp", selection.StatusConditional); err != nil {
		t.Fatal(err)
	}
	check()

	counts := Stats(tax, sels)
	if counts.Eligible != 1 || counts.Conditional != 1 || counts.Unselected != 2 {
		t.Fatalf("counts = %+v", counts)
	}
}

func TestStatsIgnoreStaleIDs(t *testing.T) {
	tax, sels := fixture(t)
	// A selection for an activity the taxonomy no longer contains.
	if _, err := sels.ToggleStatus(context.Background(), "removed-activity", selection.StatusEligible); err != nil {
		t.Fatal(err)
	}

	counts := Stats(tax, sels)
	if counts.Eligible != 0 {
		t.Fatalf("stale id counted: %+v", counts)
	}
	if counts.Total != tax.ActivityCount() {
		t.Fatalf("total = %d", counts.Total)
	}
}

func TestCountLevels(t *testing.T) {
	tax, sels := fixture(t)
	filtered := Filter(tax, sels, Query{Text: "rafters"})
	counts := CountLevels(filtered, tax)

	if counts.Pillars != (LevelCount{Visible: 1, Total: 2}) {
		t.Errorf("pillars = %+v", counts.Pillars)
	}
	if counts.Activities != (LevelCount{Visible: 1, Total: 4}) {
		t.Errorf("activities = %+v", counts.Activities)
	}
	if counts.Types != (LevelCount{Visible: 1, Total: 3}) {
		t.Errorf("types = %+v", counts.Types)
	}
}
