package manual

// Step is one screen of the guided wizard.
type Step struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Steps is the fixed wizard sequence.
var Steps = []Step{
	{ID: "foundations", Title: "Setup", Description: "Org details and key staff"},
	{ID: "policyMap", Title: "Policy Map", Description: "Distinguish org vs. program policies"},
	{ID: "programModel", Title: "Roles/Responsibilities", Description: "Define staff and board roles"},
	{ID: "scope", Title: "Scope & Impact", Description: "Eligibility, caps, and exclusions"},
	{ID: "clientServices", Title: "Client Services", Description: "Service flow and participation"},
	{ID: "screening", Title: "Prioritization", Description: "Intake and scoring matrix"},
	{ID: "lifecycle", Title: "Project Lifecycle", Description: "Assessment to closeout"},
	{ID: "workforce", Title: "Workforce Strategy", Description: "Contractors vs. volunteers"},
	{ID: "performance", Title: "Performance", Description: "KPIs and reporting"},
	{ID: "compliance", Title: "Compliance", Description: "Policy alignment checklist"},
	{ID: "export", Title: "Review & Export", Description: "Finalize and download"},
}

// StepStatus is the advisory completeness result for one step. Nothing is
// ever blocked on it.
type StepStatus struct {
	Step
	Complete bool `json:"complete"`
	Warning  bool `json:"warning"`
}

// StepStatuses evaluates every step against the document.
func StepStatuses(data Data) []StepStatus {
	out := make([]StepStatus, 0, len(Steps))
	for _, step := range Steps {
		out = append(out, StepStatus{
			Step:     step,
			Complete: Complete(step.ID, data),
			Warning:  Warning(step.ID, data),
		})
	}
	return out
}

// Complete reports whether a step's soft requirements are all met. Steps
// without explicit checks never report complete.
func Complete(stepID string, data Data) bool {
	switch stepID {
	case "foundations":
		return data.OrgName != "" && data.OrgAddress != "" && data.OrgPhone != "" &&
			data.OrgEmail != "" && data.ServiceArea != ""
	case "policyMap":
		return policyMapCovered(data)
	case "scope":
		return data.ConstructionActivities.HasCatalog != nil && *data.ConstructionActivities.HasCatalog
	case "clientServices":
		return data.ClientServices.Participation.Required != ""
	}
	return false
}

// Warning reports whether a step needs attention before export.
func Warning(stepID string, data Data) bool {
	switch stepID {
	case "foundations":
		return !Complete(stepID, data)
	case "policyMap":
		return !policyMapCovered(data)
	case "scope":
		return data.ConstructionActivities.HasCatalog != nil && !*data.ConstructionActivities.HasCatalog
	case "clientServices":
		return data.ClientServices.Participation.Required == ""
	}
	return false
}

// policyMapCovered holds when every policy category is owned at the org or
// program level.
func policyMapCovered(data Data) bool {
	if len(data.PolicyMap) == 0 {
		return false
	}
	for _, entry := range data.PolicyMap {
		if !entry.Org && !entry.Program {
			return false
		}
	}
	return true
}
