package search

import (
	"errors"
	"sync"
	"testing"

	meili "github.com/meilisearch/meilisearch-go"
)

// fakeIndex records document pushes; everything else panics via the nil
// embedded interface if reached.
type fakeIndex struct {
	meili.IndexManager
	mu    sync.Mutex
	added int
}

func (f *fakeIndex) AddDocuments(docs interface{}, primaryKey *string) (*meili.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if records, ok := docs.([]ActivityRecord); ok {
		f.added += len(records)
	}
	return &meili.TaskInfo{}, nil
}

func (f *fakeIndex) UpdateFilterableAttributes(attrs *[]interface{}) (*meili.TaskInfo, error) {
	return &meili.TaskInfo{}, nil
}

func (f *fakeIndex) UpdateSearchableAttributes(attrs *[]string) (*meili.TaskInfo, error) {
	return &meili.TaskInfo{}, nil
}

func (f *fakeIndex) addedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.added
}

type fakeManager struct {
	meili.ServiceManager
	mu        sync.Mutex
	healthErr error
	index     *fakeIndex
}

func (f *fakeManager) Health() (*meili.Health, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &meili.Health{Status: "available"}, nil
}

func (f *fakeManager) CreateIndex(cfg *meili.IndexConfig) (*meili.TaskInfo, error) {
	return &meili.TaskInfo{}, nil
}

func (f *fakeManager) Index(uid string) meili.IndexManager { return f.index }

func (f *fakeManager) setHealthErr(err error) {
	f.mu.Lock()
	f.healthErr = err
	f.mu.Unlock()
}

func newFakeMeili() (*Meili, *fakeManager) {
	manager := &fakeManager{index: &fakeIndex{}}
	return &Meili{client: manager, done: make(chan struct{})}, manager
}

func TestReindexReplaysRecordsOnRecovery(t *testing.T) {
	m, manager := newFakeMeili()
	m.healthy.Store(false) // engine was down at startup

	svc := NewService(m, NewMemory(nil))
	records := testRecords()
	svc.Reindex(records)

	if got := manager.index.addedCount(); got != 0 {
		t.Fatalf("pushed %d records while unhealthy", got)
	}

	// Next health poll finds the engine back up; the retained records must
	// be replayed or search would serve an empty index forever.
	m.checkHealth()
	if !m.Healthy() {
		t.Fatal("engine should be healthy after a successful poll")
	}
	if got := manager.index.addedCount(); got != len(records) {
		t.Fatalf("replayed %d records, want %d", got, len(records))
	}
}

func TestIndexActivitiesPushesWhenHealthy(t *testing.T) {
	m, manager := newFakeMeili()
	m.healthy.Store(true)

	if err := m.IndexActivities(testRecords()); err != nil {
		t.Fatalf("index: %v", err)
	}
	if got := manager.index.addedCount(); got != len(testRecords()) {
		t.Fatalf("pushed %d records", got)
	}
}

func TestCheckHealthMarksEngineDown(t *testing.T) {
	m, manager := newFakeMeili()
	m.healthy.Store(true)
	manager.setHealthErr(errors.New("connection refused"))

	m.checkHealth()
	if m.Healthy() {
		t.Fatal("engine should be unhealthy after a failed poll")
	}
	if got := manager.index.addedCount(); got != 0 {
		t.Fatalf("pushed %d records while going down", got)
	}
}

func TestCheckHealthDoesNotReplayWhileSteadyHealthy(t *testing.T) {
	m, manager := newFakeMeili()
	m.healthy.Store(true)
	if err := m.IndexActivities(testRecords()); err != nil {
		t.Fatal(err)
	}
	before := manager.index.addedCount()

	m.checkHealth()
	if got := manager.index.addedCount(); got != before {
		t.Fatalf("steady-state poll pushed records: %d -> %d", before, got)
	}
}
