package manual

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"catalog/api/internal/kv"
)

// Store keeps the manual document in memory and writes every update through
// to the KV backend before acknowledging it.
type Store struct {
	mu      sync.RWMutex
	backend kv.Store
	key     string
	data    Data
}

func NewStore(backend kv.Store, key string) *Store {
	return &Store{backend: backend, key: key, data: Default()}
}

// Load reads the persisted document. A missing key keeps the defaults; a
// corrupt value is discarded with a diagnostic and the defaults are kept. Load
// never fails the caller for bad persisted data.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load manual: %w", err)
	}
	if !ok {
		return nil
	}
	var data Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		log.Printf("manual: discarding corrupt persisted document: %v", err)
		return nil
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the current document.
func (s *Store) Get() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Update replaces the document. The previous version is restored when the
// backend write fails.
func (s *Store) Update(ctx context.Context, data Data) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.data
	data.Version = Version
	data.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	s.data = data

	if err := s.persistLocked(ctx); err != nil {
		s.data = prev
		return Data{}, fmt.Errorf("persist manual: %w", err)
	}
	return s.data, nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encode manual: %w", err)
	}
	return s.backend.Set(ctx, s.key, string(raw))
}
