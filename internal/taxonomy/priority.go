package taxonomy

import "fmt"

// Priority is a derived tier combining urgency and condition. Lower numbers
// are strictly more urgent.
type Priority int

// Label renders the display form, e.g. "Priority 1".
func (p Priority) Label() string {
	return fmt.Sprintf("Priority %d", int(p))
}

// The Emergent/Inactive and Non-Critical/Passive cells both map to tier 5.
// That tie comes straight from the published prioritization matrix; confirm
// with program policy before changing it.
var priorityTable = map[Urgency]map[Condition]Priority{
	UrgencyCritical:    {ConditionActive: 1, ConditionPassive: 2, ConditionInactive: 3},
	UrgencyEmergent:    {ConditionActive: 2, ConditionPassive: 3, ConditionInactive: 5},
	UrgencyNonCritical: {ConditionActive: 4, ConditionPassive: 5, ConditionInactive: 6},
}

// PriorityFor maps an urgency/condition pair to its priority tier. The second
// return is false when either input is N/A: such activities (community
// strengthening and the like) have no priority at all, and callers must omit
// badges and ordering for them rather than treat it as an error.
func PriorityFor(u Urgency, c Condition) (Priority, bool) {
	row, ok := priorityTable[u]
	if !ok {
		return 0, false
	}
	p, ok := row[c]
	return p, ok
}
