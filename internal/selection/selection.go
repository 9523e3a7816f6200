// Package selection holds the only mutable domain state: per-activity
// eligibility decisions with optional urgency/condition overrides and notes.
package selection

import (
	"errors"

	"catalog/api/internal/taxonomy"
)

// Status is a user's eligibility decision for one activity. The empty string
// means unselected.
type Status string

const (
	StatusUnselected  Status = ""
	StatusEligible    Status = "eligible"
	StatusNotEligible Status = "not_eligible"
	StatusConditional Status = "conditional"
	StatusNA          Status = "na"
)

// Statuses lists the four explicit decision values in display order.
var Statuses = []Status{StatusEligible, StatusNotEligible, StatusConditional, StatusNA}

var (
	// ErrInvalidStatus is returned for a status outside the four decisions.
	ErrInvalidStatus = errors.New("selection: invalid status")
	// ErrInvalidOverride is returned for an urgency or condition override
	// outside its enumeration.
	ErrInvalidOverride = errors.New("selection: invalid override")
)

// ValidStatus reports whether s is one of the four explicit decisions.
func ValidStatus(s Status) bool {
	switch s {
	case StatusEligible, StatusNotEligible, StatusConditional, StatusNA:
		return true
	}
	return false
}

// Selection is one activity's decision record. The zero value means the
// activity has never been decided on. Overrides are empty when the activity
// default applies.
type Selection struct {
	Status    Status             `json:"status,omitempty"`
	Urgency   taxonomy.Urgency   `json:"urgency,omitempty"`
	Condition taxonomy.Condition `json:"condition,omitempty"`
	Notes     string             `json:"notes,omitempty"`
}

// IsZero reports whether the record carries no decision, overrides, or notes.
func (s Selection) IsZero() bool {
	return s.Status == StatusUnselected && s.Urgency == "" && s.Condition == "" && s.Notes == ""
}

// EffectiveUrgency resolves override-if-present-else-default. This is the
// single implementation of that rule; filter, stats, and export all reach it
// through the store.
func (s Selection) EffectiveUrgency(def taxonomy.Urgency) taxonomy.Urgency {
	if s.Urgency != "" {
		return s.Urgency
	}
	return def
}

// EffectiveCondition resolves override-if-present-else-default.
func (s Selection) EffectiveCondition(def taxonomy.Condition) taxonomy.Condition {
	if s.Condition != "" {
		return s.Condition
	}
	return def
}
