// Package search provides advisory free-text search over catalog activities.
// Meilisearch serves queries when it is reachable and an in-memory scan takes
// over when it is not. The pruned-tree filter in the catalog package stays
// authoritative either way.
package search

import "catalog/api/internal/taxonomy"

// ActivityRecord is the data we index for one activity.
type ActivityRecord struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	TypeName        string `json:"typeName"`
	SubCategoryName string `json:"subCategoryName"`
	PillarID        string `json:"pillarId"`
	PillarName      string `json:"pillarName"`
}

// Result is a single search hit returned to the caller.
type Result struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Snippet         string `json:"snippet,omitempty"`
	TypeName        string `json:"typeName"`
	SubCategoryName string `json:"subCategoryName"`
	PillarName      string `json:"pillarName"`
}

// Query describes a search request.
type Query struct {
	Text     string
	PillarID string
	Limit    int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a free-text activity search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Records flattens the taxonomy into indexable activity records.
func Records(tax *taxonomy.Taxonomy) []ActivityRecord {
	rows := tax.Flatten()
	records := make([]ActivityRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ActivityRecord{
			ID:              row.Activity.ID,
			Name:            row.Activity.Name,
			Description:     row.TypeDescription,
			TypeName:        row.TypeName,
			SubCategoryName: row.SubCategoryName,
			PillarID:        row.PillarID,
			PillarName:      row.PillarName,
		})
	}
	return records
}
