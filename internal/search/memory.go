package search

import "strings"

// Memory is the fallback searcher: a case-insensitive substring scan over the
// flattened activity rows. Always healthy.
type Memory struct {
	records []ActivityRecord
}

func NewMemory(records []ActivityRecord) *Memory {
	return &Memory{records: records}
}

func (m *Memory) Healthy() bool { return true }

func (m *Memory) Search(q Query) ([]Result, int, error) {
	limit := q.Limit
	if limit == 0 {
		limit = 20
	}
	needle := strings.ToLower(strings.TrimSpace(q.Text))

	results := make([]Result, 0)
	total := 0
	for _, rec := range m.records {
		if q.PillarID != "" && rec.PillarID != q.PillarID {
			continue
		}
		if needle != "" && !recordMatches(rec, needle) {
			continue
		}
		total++
		if len(results) < limit {
			results = append(results, Result{
				ID:              rec.ID,
				Name:            rec.Name,
				TypeName:        rec.TypeName,
				SubCategoryName: rec.SubCategoryName,
				PillarName:      rec.PillarName,
			})
		}
	}
	return results, total, nil
}

func recordMatches(rec ActivityRecord, needle string) bool {
	for _, field := range []string{rec.Name, rec.TypeName, rec.SubCategoryName, rec.PillarName, rec.Description} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
