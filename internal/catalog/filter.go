// Package catalog projects the taxonomy and the selection store into view
// models: the pruned filter subtree and the aggregate counts.
package catalog

import (
	"strings"

	"catalog/api/internal/selection"
	"catalog/api/internal/taxonomy"
)

// Query is one filter request. Zero value means "everything": the empty
// query returns the full taxonomy unchanged.
type Query struct {
	Text          string
	PillarID      string
	SubCategoryID string
	TypeID        string
	Status        selection.Status // one of the four, or "unselected"
	CriticalOnly  bool
}

// StatusUnselectedFilter matches activities whose selection is absent or
// carries no decision.
const StatusUnselectedFilter selection.Status = "unselected"

// IsEmpty reports whether the query restricts nothing.
func (q Query) IsEmpty() bool {
	return q.Text == "" && q.PillarID == "" && q.SubCategoryID == "" &&
		q.TypeID == "" && q.Status == "" && !q.CriticalOnly
}

// Filter prunes the taxonomy bottom-up to the branches containing at least
// one matching activity. Ordering is preserved and nothing is re-ordered or
// deduplicated. The result shares activity values with the input and must be
// treated as read-only.
func Filter(tax *taxonomy.Taxonomy, sels *selection.Store, q Query) *taxonomy.Taxonomy {
	if q.IsEmpty() {
		return tax
	}

	needle := strings.ToLower(strings.TrimSpace(q.Text))
	out := &taxonomy.Taxonomy{}

	for _, p := range tax.Pillars {
		if q.PillarID != "" && p.ID != q.PillarID {
			continue
		}
		keptPillar := taxonomy.Pillar{ID: p.ID, Name: p.Name, Description: p.Description}
		for _, sc := range p.SubCategories {
			if q.SubCategoryID != "" && sc.ID != q.SubCategoryID {
				continue
			}
			keptSub := taxonomy.SubCategory{ID: sc.ID, Name: sc.Name, Description: sc.Description}
			for _, ty := range sc.Types {
				if q.TypeID != "" && ty.ID != q.TypeID {
					continue
				}
				keptType := taxonomy.Type{ID: ty.ID, Name: ty.Name, Description: ty.Description}
				for _, a := range ty.Activities {
					if activityMatches(a, ty, sels, q, needle) {
						keptType.Activities = append(keptType.Activities, a)
					}
				}
				if len(keptType.Activities) > 0 {
					keptSub.Types = append(keptSub.Types, keptType)
				}
			}
			if len(keptSub.Types) > 0 {
				keptPillar.SubCategories = append(keptPillar.SubCategories, keptSub)
			}
		}
		if len(keptPillar.SubCategories) > 0 {
			out.Pillars = append(out.Pillars, keptPillar)
		}
	}
	return out
}

// activityMatches applies the leaf predicates: text against activity and
// type names, the status filter, and the critical-only flag against the
// effective urgency.
func activityMatches(a taxonomy.Activity, ty taxonomy.Type, sels *selection.Store, q Query, needle string) bool {
	if needle != "" &&
		!strings.Contains(strings.ToLower(a.Name), needle) &&
		!strings.Contains(strings.ToLower(ty.Name), needle) {
		return false
	}
	if q.Status != "" {
		status := sels.StatusOf(a.ID)
		if q.Status == StatusUnselectedFilter {
			if status != selection.StatusUnselected {
				return false
			}
		} else if status != q.Status {
			return false
		}
	}
	if q.CriticalOnly && sels.EffectiveUrgency(a) != taxonomy.UrgencyCritical {
		return false
	}
	return true
}
