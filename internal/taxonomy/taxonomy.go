// Package taxonomy holds the immutable reference catalog of construction
// activities: Pillars containing Sub-Categories containing Types containing
// Activities. The tree is loaded once at startup and never mutated.
package taxonomy

import "fmt"

// Urgency describes how soon a defect must be addressed.
type Urgency string

const (
	UrgencyCritical    Urgency = "Critical"
	UrgencyEmergent    Urgency = "Emergent"
	UrgencyNonCritical Urgency = "Non-Critical"
	UrgencyNA          Urgency = "N/A"
)

// Condition describes whether a defect is worsening, stable, or suboptimal.
type Condition string

const (
	ConditionActive   Condition = "Active"
	ConditionPassive  Condition = "Passive"
	ConditionInactive Condition = "Inactive"
	ConditionNA       Condition = "N/A"
)

// Activity is the leaf of the taxonomy: one named, selectable unit of repair
// work with its default urgency and condition. Activity ids are globally
// unique; the selection store keys off them.
type Activity struct {
	ID               string    `yaml:"id" json:"id"`
	Name             string    `yaml:"name" json:"name"`
	DefaultUrgency   Urgency   `yaml:"defaultUrgency" json:"defaultUrgency"`
	DefaultCondition Condition `yaml:"defaultCondition" json:"defaultCondition"`
}

// Type groups closely related activities.
type Type struct {
	ID          string     `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Activities  []Activity `yaml:"activities" json:"activities"`
}

// SubCategory groups related types within a pillar. Its id is unique across
// the whole taxonomy, not just within its pillar.
type SubCategory struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Types       []Type `yaml:"types" json:"types"`
}

// Pillar is a top-level thematic category of repair work.
type Pillar struct {
	ID            string        `yaml:"id" json:"id"`
	Name          string        `yaml:"name" json:"name"`
	Description   string        `yaml:"description" json:"description"`
	SubCategories []SubCategory `yaml:"subCategories" json:"subCategories"`
}

// Taxonomy is the full reference tree. Order is display-significant at every
// level; identity is by id.
type Taxonomy struct {
	Pillars []Pillar `yaml:"pillars" json:"pillars"`

	flat []FlatActivity
	byID map[string]Activity
}

// ActivityCount reports the total number of leaf activities.
func (t *Taxonomy) ActivityCount() int {
	return len(t.Flatten())
}

// ActivityByID returns the activity with the given id, if present.
func (t *Taxonomy) ActivityByID(id string) (Activity, bool) {
	if t.byID == nil {
		t.index()
	}
	a, ok := t.byID[id]
	return a, ok
}

func (t *Taxonomy) index() {
	t.byID = make(map[string]Activity)
	for _, row := range t.Flatten() {
		t.byID[row.Activity.ID] = row.Activity
	}
}

// validate checks id uniqueness and enum values across the whole tree.
func (t *Taxonomy) validate() error {
	pillarIDs := map[string]struct{}{}
	subIDs := map[string]struct{}{}
	typeIDs := map[string]struct{}{}
	activityIDs := map[string]struct{}{}

	for _, p := range t.Pillars {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("pillar %q: id and name are required", p.ID)
		}
		if _, dup := pillarIDs[p.ID]; dup {
			return fmt.Errorf("duplicate pillar id %q", p.ID)
		}
		pillarIDs[p.ID] = struct{}{}
		for _, sc := range p.SubCategories {
			if sc.ID == "" || sc.Name == "" {
				return fmt.Errorf("pillar %q: sub-category %q: id and name are required", p.ID, sc.ID)
			}
			if _, dup := subIDs[sc.ID]; dup {
				return fmt.Errorf("duplicate sub-category id %q", sc.ID)
			}
			subIDs[sc.ID] = struct{}{}
			for _, ty := range sc.Types {
				if ty.ID == "" || ty.Name == "" {
					return fmt.Errorf("sub-category %q: type %q: id and name are required", sc.ID, ty.ID)
				}
				if _, dup := typeIDs[ty.ID]; dup {
					return fmt.Errorf("duplicate type id %q", ty.ID)
				}
				typeIDs[ty.ID] = struct{}{}
				for _, a := range ty.Activities {
					if a.ID == "" || a.Name == "" {
						return fmt.Errorf("type %q: activity %q: id and name are required", ty.ID, a.ID)
					}
					if _, dup := activityIDs[a.ID]; dup {
						return fmt.Errorf("duplicate activity id %q", a.ID)
					}
					activityIDs[a.ID] = struct{}{}
					if !ValidUrgency(a.DefaultUrgency) {
						return fmt.Errorf("activity %q: invalid urgency %q", a.ID, a.DefaultUrgency)
					}
					if !ValidCondition(a.DefaultCondition) {
						return fmt.Errorf("activity %q: invalid condition %q", a.ID, a.DefaultCondition)
					}
				}
			}
		}
	}
	return nil
}

// ValidUrgency reports whether u is a member of the urgency enumeration.
func ValidUrgency(u Urgency) bool {
	switch u {
	case UrgencyCritical, UrgencyEmergent, UrgencyNonCritical, UrgencyNA:
		return true
	}
	return false
}

// ValidCondition reports whether c is a member of the condition enumeration.
func ValidCondition(c Condition) bool {
	switch c {
	case ConditionActive, ConditionPassive, ConditionInactive, ConditionNA:
		return true
	}
	return false
}
