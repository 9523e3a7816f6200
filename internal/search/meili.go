package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const idxActivities = "catalog_activities"

// Meili implements Searcher via Meilisearch. It retains the last indexed
// record set so an instance that comes back empty after an outage can be
// refilled; without that replay a recovered engine would serve zero hits and
// the fallback would never engage.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}

	mu      sync.Mutex
	records []ActivityRecord
}

// NewMeili creates a Meilisearch client and configures the activities index.
// Returns a client that reports unhealthy if the initial connection fails;
// the health loop picks it up when it comes back.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxActivities,
		PrimaryKey: "id",
	}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", idxActivities, err)
	}

	index := m.client.Index(idxActivities)
	filterable := []interface{}{"pillarId"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("search: update filterable attrs for %s: %v", idxActivities, err)
	}
	searchable := []string{"name", "typeName", "subCategoryName", "pillarName", "description"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs for %s: %v", idxActivities, err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.checkHealth()
		}
	}
}

// checkHealth polls the engine once. On recovery the index settings and the
// retained records are replayed: an instance that was down at startup or lost
// its data comes back with an empty index otherwise.
func (m *Meili) checkHealth() {
	_, err := m.client.Health()
	wasHealthy := m.healthy.Load()
	m.healthy.Store(err == nil)
	if err == nil && !wasHealthy {
		log.Println("search: meilisearch recovered, reconfiguring index")
		m.configureIndex()
		if err := m.pushRecords(); err != nil {
			log.Printf("search: replay activity records: %v", err)
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// IndexActivities retains the record set and pushes it when the engine is
// reachable. The taxonomy never changes at runtime, so this set is the whole
// index; retaining it while the engine is down lets checkHealth replay it.
func (m *Meili) IndexActivities(records []ActivityRecord) error {
	m.mu.Lock()
	m.records = records
	m.mu.Unlock()
	if !m.healthy.Load() {
		return nil
	}
	return m.pushRecords()
}

func (m *Meili) pushRecords() error {
	m.mu.Lock()
	records := m.records
	m.mu.Unlock()
	if len(records) == 0 {
		return nil
	}
	_, err := m.client.Index(idxActivities).AddDocuments(records, nil)
	return err
}

// Search queries the activities index.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	sr := &meili.SearchRequest{
		Limit:                 limit,
		AttributesToHighlight: []string{"*"},
		HighlightPreTag:       "<mark>",
		HighlightPostTag:      "</mark>",
	}
	if q.PillarID != "" {
		sr.Filter = []string{fmt.Sprintf("pillarId = %q", q.PillarID)}
	}

	resp, err := m.client.Index(idxActivities).Search(q.Text, sr)
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch search: %w", err)
	}

	results := make([]Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		results = append(results, hitToResult(hit))
	}
	return results, int(resp.EstimatedTotalHits), nil
}

func hitToResult(hit meili.Hit) Result {
	r := Result{
		ID:              decodeString(hit, "id"),
		Name:            decodeString(hit, "name"),
		TypeName:        decodeString(hit, "typeName"),
		SubCategoryName: decodeString(hit, "subCategoryName"),
		PillarName:      decodeString(hit, "pillarName"),
	}
	r.Snippet = firstNonBlank(decodeFormattedString(hit, "name"), decodeFormattedString(hit, "description"))
	return r
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]string
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	return strings.TrimSpace(formatted[key])
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
