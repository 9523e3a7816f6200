package catalog

import (
	"catalog/api/internal/selection"
	"catalog/api/internal/taxonomy"
)

// StatusCounts tallies activities by decision. The five buckets always sum
// to the total activity count.
type StatusCounts struct {
	Eligible    int `json:"eligible"`
	NotEligible int `json:"notEligible"`
	Conditional int `json:"conditional"`
	NA          int `json:"na"`
	Unselected  int `json:"unselected"`
	Total       int `json:"total"`
}

// Stats recomputes the status tally from scratch. Stale selection ids (not
// present in the taxonomy) are inert and never counted.
func Stats(tax *taxonomy.Taxonomy, sels *selection.Store) StatusCounts {
	counts := StatusCounts{}
	for _, row := range tax.Flatten() {
		counts.Total++
		switch sels.StatusOf(row.Activity.ID) {
		case selection.StatusEligible:
			counts.Eligible++
		case selection.StatusNotEligible:
			counts.NotEligible++
		case selection.StatusConditional:
			counts.Conditional++
		case selection.StatusNA:
			counts.NA++
		default:
			counts.Unselected++
		}
	}
	return counts
}

// LevelCount pairs retained against total nodes for an "X of Y" display.
type LevelCount struct {
	Visible int `json:"visible"`
	Total   int `json:"total"`
}

// LevelCounts reports per-level visibility of a filtered subtree against the
// full taxonomy.
type LevelCounts struct {
	Pillars       LevelCount `json:"pillars"`
	SubCategories LevelCount `json:"subCategories"`
	Types         LevelCount `json:"types"`
	Activities    LevelCount `json:"activities"`
}

// CountLevels tallies nodes at each hierarchy level of filtered versus full.
func CountLevels(filtered, full *taxonomy.Taxonomy) LevelCounts {
	fp, fs, ft, fa := countNodes(filtered)
	tp, ts, tt, ta := countNodes(full)
	return LevelCounts{
		Pillars:       LevelCount{Visible: fp, Total: tp},
		SubCategories: LevelCount{Visible: fs, Total: ts},
		Types:         LevelCount{Visible: ft, Total: tt},
		Activities:    LevelCount{Visible: fa, Total: ta},
	}
}

func countNodes(t *taxonomy.Taxonomy) (pillars, subCategories, types, activities int) {
	for _, p := range t.Pillars {
		pillars++
		for _, sc := range p.SubCategories {
			subCategories++
			for _, ty := range sc.Types {
				types++
				activities += len(ty.Activities)
			}
		}
	}
	return
}
