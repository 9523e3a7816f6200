package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"catalog/api/internal/kv"
	"catalog/api/internal/taxonomy"
)

// persistedState is the on-disk shape of the whole store. Unknown fields in
// older or newer payloads are ignored on load.
type persistedState struct {
	Version    int                  `json:"version"`
	Selections map[string]Selection `json:"selections"`
}

const stateVersion = 1

// Store maps activity ids to selection records and writes the whole map
// through to the persistence boundary on every mutation. A mutation is not
// acknowledged until its write has succeeded.
type Store struct {
	mu         sync.Mutex
	backend    kv.Store
	key        string
	selections map[string]Selection
}

// NewStore creates an empty store persisting under the given key.
func NewStore(backend kv.Store, key string) *Store {
	return &Store{
		backend:    backend,
		key:        key,
		selections: make(map[string]Selection),
	}
}

// Load reads the persisted store. A missing key yields an empty store.
// Corrupt content is discarded with a diagnostic log line — never fatal, a
// taxonomy change or bad write must not block the user.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("selection: load: %w", err)
	}
	if !ok {
		return nil
	}

	var state persistedState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		log.Printf("selection: discarding corrupt persisted state: %v", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections = make(map[string]Selection, len(state.Selections))
	for id, sel := range state.Selections {
		s.selections[id] = sel
	}
	return nil
}

// Get returns the record for an activity; the zero value when absent.
func (s *Store) Get(activityID string) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selections[activityID]
}

// All returns a copy of every record, including zero-valued leftovers.
func (s *Store) All() map[string]Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Selection, len(s.selections))
	for id, sel := range s.selections {
		out[id] = sel
	}
	return out
}

// ToggleStatus sets an activity's status, or clears it back to unselected
// when the given status is already set. The record itself remains.
func (s *Store) ToggleStatus(ctx context.Context, activityID string, status Status) (Selection, error) {
	if !ValidStatus(status) {
		return Selection{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.mutate(ctx, activityID, func(sel Selection) Selection {
		if sel.Status == status {
			sel.Status = StatusUnselected
		} else {
			sel.Status = status
		}
		return sel
	})
}

// SetOverrides replaces the urgency/condition overrides. An empty value
// clears that override back to the activity default.
func (s *Store) SetOverrides(ctx context.Context, activityID string, urgency taxonomy.Urgency, condition taxonomy.Condition) (Selection, error) {
	if urgency != "" && !taxonomy.ValidUrgency(urgency) {
		return Selection{}, fmt.Errorf("%w: urgency %q", ErrInvalidOverride, urgency)
	}
	if condition != "" && !taxonomy.ValidCondition(condition) {
		return Selection{}, fmt.Errorf("%w: condition %q", ErrInvalidOverride, condition)
	}
	return s.mutate(ctx, activityID, func(sel Selection) Selection {
		sel.Urgency = urgency
		sel.Condition = condition
		return sel
	})
}

// SetNotes replaces the free-text note.
func (s *Store) SetNotes(ctx context.Context, activityID, notes string) (Selection, error) {
	return s.mutate(ctx, activityID, func(sel Selection) Selection {
		sel.Notes = notes
		return sel
	})
}

// Clear resets the whole record to the zero value.
func (s *Store) Clear(ctx context.Context, activityID string) (Selection, error) {
	return s.mutate(ctx, activityID, func(Selection) Selection {
		return Selection{}
	})
}

// mutate applies fn to the record under lock, persists the full map, and
// rolls the in-memory change back if the write fails.
func (s *Store) mutate(ctx context.Context, activityID string, fn func(Selection) Selection) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.selections[activityID]
	next := fn(prev)
	s.selections[activityID] = next

	if err := s.persistLocked(ctx); err != nil {
		if existed {
			s.selections[activityID] = prev
		} else {
			delete(s.selections, activityID)
		}
		return Selection{}, fmt.Errorf("selection: persist: %w", err)
	}
	return next, nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	state := persistedState{Version: stateVersion, Selections: s.selections}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return s.backend.Set(ctx, s.key, string(data))
}

// EffectiveUrgency resolves the effective urgency for an activity.
func (s *Store) EffectiveUrgency(a taxonomy.Activity) taxonomy.Urgency {
	return s.Get(a.ID).EffectiveUrgency(a.DefaultUrgency)
}

// EffectiveCondition resolves the effective condition for an activity.
func (s *Store) EffectiveCondition(a taxonomy.Activity) taxonomy.Condition {
	return s.Get(a.ID).EffectiveCondition(a.DefaultCondition)
}

// Priority derives the priority tier from the effective urgency and
// condition. False when either effective value is N/A.
func (s *Store) Priority(a taxonomy.Activity) (taxonomy.Priority, bool) {
	sel := s.Get(a.ID)
	return taxonomy.PriorityFor(sel.EffectiveUrgency(a.DefaultUrgency), sel.EffectiveCondition(a.DefaultCondition))
}

// StatusOf returns the status for an activity id; StatusUnselected when no
// record or no decision exists.
func (s *Store) StatusOf(activityID string) Status {
	return s.Get(activityID).Status
}
