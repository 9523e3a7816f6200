package taxonomy

// FlatActivity is one activity annotated with its full ancestry. Grouped
// displays and every export format are built from these rows.
type FlatActivity struct {
	Activity Activity `json:"activity"`

	PillarID          string `json:"pillarId"`
	PillarName        string `json:"pillarName"`
	PillarDescription string `json:"pillarDescription"`

	SubCategoryID          string `json:"subCategoryId"`
	SubCategoryName        string `json:"subCategoryName"`
	SubCategoryDescription string `json:"subCategoryDescription"`

	TypeID          string `json:"typeId"`
	TypeName        string `json:"typeName"`
	TypeDescription string `json:"typeDescription,omitempty"`
}

// Flatten returns one row per activity in stable depth-first order: pillar
// order, then sub-category, then type, then activity. The result is computed
// once and cached; callers must treat it as read-only.
func (t *Taxonomy) Flatten() []FlatActivity {
	if t.flat != nil {
		return t.flat
	}
	rows := make([]FlatActivity, 0)
	for _, p := range t.Pillars {
		for _, sc := range p.SubCategories {
			for _, ty := range sc.Types {
				for _, a := range ty.Activities {
					rows = append(rows, FlatActivity{
						Activity:               a,
						PillarID:               p.ID,
						PillarName:             p.Name,
						PillarDescription:      p.Description,
						SubCategoryID:          sc.ID,
						SubCategoryName:        sc.Name,
						SubCategoryDescription: sc.Description,
						TypeID:                 ty.ID,
						TypeName:               ty.Name,
						TypeDescription:        ty.Description,
					})
				}
			}
		}
	}
	t.flat = rows
	return rows
}
