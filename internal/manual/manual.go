// Package manual holds the guided-wizard document for a repair program's
// policies and procedures. The whole document is one JSON object persisted in
// the KV store; every edit writes through before it is acknowledged.
package manual

import (
	"encoding/json"
	"time"
)

// Version is stamped into new documents and bumped on schema changes.
const Version = "1.0.0"

// Amount tolerates both JSON numbers and strings for money fields.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

type StaffMember struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// PolicyMapEntry records at which level a policy category is defined.
type PolicyMapEntry struct {
	Org            bool   `json:"org"`
	Program        bool   `json:"program"`
	ProgramDetails string `json:"programDetails"`
}

type PolicyPackage struct {
	Exists        bool              `json:"exists"`
	CoveredTopics map[string]bool   `json:"coveredTopics"`
	TopicContent  map[string]string `json:"topicContent"`
}

type Governance struct {
	ApprovalDate        string `json:"approvalDate"`
	PolicyVersion       string `json:"policyVersion"`
	LastReviewDate      string `json:"lastReviewDate"`
	NextReviewDate      string `json:"nextReviewDate"`
	StorageLocation     string `json:"storageLocation"`
	ApproverRole        string `json:"approverRole"`
	ResolutionReference string `json:"resolutionReference"`
}

type Role struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	Responsibilities string   `json:"responsibilities"`
	Approves         []string `json:"approves"`
}

type Stage struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	ReqDoc string `json:"reqDoc"`
}

type Participation struct {
	Required      string `json:"required"`
	Options       string `json:"options"`
	Documentation string `json:"documentation"`
}

type ClientServices struct {
	Stages        []Stage       `json:"stages"`
	Participation Participation `json:"participation"`
}

type ProjectFeasibility struct {
	AssessmentProtocol string `json:"assessmentProtocol"`
	SelectionAuthority string `json:"selectionAuthority"`
	SelectionArtifact  string `json:"selectionArtifact"`
	FeasibilityLimits  string `json:"feasibilityLimits"`
}

type Procurement struct {
	SelectionMethod   string          `json:"selectionMethod"`
	MinQualifications string          `json:"minQualifications"`
	RequiredDocs      map[string]bool `json:"requiredDocs"`
}

type VolunteerStandards struct {
	AllowedScopes string `json:"allowedScopes"`
	Supervision   string `json:"supervision"`
	Training      string `json:"training"`
}

type Safety struct {
	RiskScreening               string `json:"riskScreening"`
	SafetyPlan                  string `json:"safetyPlan"`
	SpecialtyContractorTriggers string `json:"specialtyContractorTriggers"`
}

type Sustainability struct {
	FundingMix      string `json:"fundingMix"`
	CostControls    string `json:"costControls"`
	PipelineTargets string `json:"pipelineTargets"`
}

// ConstructionActivities links the manual to the activity catalog. HasCatalog
// is a three-state answer: nil means the question was never answered.
type ConstructionActivities struct {
	HasCatalog       *bool  `json:"hasCatalog"`
	EligibleScopes   string `json:"eligibleScopes"`
	IneligibleScopes string `json:"ineligibleScopes"`
	PermitTriggers   string `json:"permitTriggers"`
}

type Pricing struct {
	ModelType         string `json:"modelType"`
	CalculationMethod string `json:"calculationMethod"`
	RepaymentTerms    string `json:"repaymentTerms"`
	HardshipPolicy    string `json:"hardshipPolicy"`
}

// Data is the whole wizard document.
type Data struct {
	OrgName          string        `json:"orgName"`
	OrgAddress       string        `json:"orgAddress"`
	OrgPhone         string        `json:"orgPhone"`
	OrgEmail         string        `json:"orgEmail"`
	ServiceArea      string        `json:"serviceArea"`
	ExistingPolicies string        `json:"existingPolicies"`
	Staff            []StaffMember `json:"staff"`

	PolicyMap     map[string]PolicyMapEntry `json:"policyMap"`
	PolicyPackage PolicyPackage             `json:"policyPackage"`

	Policy33Aligned    bool            `json:"policy33Aligned"`
	Policy33Checklist  map[string]bool `json:"policy33Checklist"`
	RepairsAOMReviewed bool            `json:"repairsAOMReviewed"`

	Governance Governance `json:"governance"`
	Roles      []Role     `json:"roles"`

	RepairTypes  map[string]bool `json:"repairTypes"`
	FinancialCap Amount          `json:"financialCap"`
	Exclusions   string          `json:"exclusions"`

	IntakeMethods      map[string]bool    `json:"intakeMethods"`
	PriorityFactors    map[string]int     `json:"priorityFactors"`
	ProjectFeasibility ProjectFeasibility `json:"projectFeasibility"`

	ClientServices ClientServices `json:"clientServices"`

	Model              string             `json:"model"`
	QCFrequency        string             `json:"qcFrequency"`
	Procurement        Procurement        `json:"procurement"`
	VolunteerStandards VolunteerStandards `json:"volunteerStandards"`
	Safety             Safety             `json:"safety"`

	KPIs              map[string]bool `json:"kpis"`
	ReportingSchedule string          `json:"reportingSchedule"`
	FeedbackMechanism string          `json:"feedbackMechanism"`
	Sustainability    Sustainability  `json:"sustainability"`

	ConstructionActivities ConstructionActivities `json:"constructionActivities"`
	Pricing                Pricing                `json:"pricing"`

	Version     string `json:"version,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

// Default returns a fresh document pre-filled the way a new program usually
// starts out.
func Default() Data {
	return Data{
		Staff: []StaffMember{
			{ID: 1, Title: "Executive Director"},
			{ID: 2, Title: "Program Manager"},
			{ID: 3, Title: "Board Champion"},
		},
		PolicyMap: map[string]PolicyMapEntry{
			"governance":    {},
			"finance":       {},
			"hr":            {},
			"eligibility":   {},
			"safety":        {},
			"procurement":   {},
			"recordKeeping": {},
		},
		PolicyPackage: PolicyPackage{
			CoveredTopics: map[string]bool{},
			TopicContent:  map[string]string{},
		},
		Policy33Checklist: map[string]bool{
			"codes":                  false,
			"agreements":             false,
			"consumerProtection":     false,
			"lendingCompliance":      false,
			"subcontractorOversight": false,
			"insurance":              false,
		},
		Governance: Governance{
			PolicyVersion: "1.0",
			ApproverRole:  "Board of Directors",
		},
		Roles: []Role{
			{ID: 1, Title: "Program Manager", Responsibilities: "Overall execution, compliance, reporting", Approves: []string{"SOW", "Closeout"}},
			{ID: 2, Title: "Intake Coordinator", Responsibilities: "Client screening, document collection", Approves: []string{"Eligibility"}},
			{ID: 3, Title: "Construction Lead", Responsibilities: "Scoping, QC, Contractor management", Approves: []string{"Change Order"}},
		},
		RepairTypes: map[string]bool{
			"critical":      true,
			"accessibility": false,
			"energy":        false,
			"exterior":      false,
		},
		FinancialCap:  "15000",
		IntakeMethods: map[string]bool{"phone": true, "web": false, "walkin": false},
		PriorityFactors: map[string]int{
			"healthSafety":  5,
			"lmiHouseholds": 3,
			"olderAdults":   3,
		},
		ProjectFeasibility: ProjectFeasibility{
			AssessmentProtocol: "internal",
			SelectionAuthority: "Program Manager",
			SelectionArtifact:  "Scoring Matrix",
		},
		ClientServices: ClientServices{
			Stages: []Stage{
				{ID: 1, Name: "Inquiry & App", ReqDoc: "Application Form"},
				{ID: 2, Name: "Eligibility Review", ReqDoc: "Income Verification"},
				{ID: 3, Name: "Home Assessment", ReqDoc: "Inspection Report"},
				{ID: 4, Name: "SOW & Approval", ReqDoc: "Signed Agreement"},
				{ID: 5, Name: "Construction", ReqDoc: "Permits"},
				{ID: 6, Name: "Closeout", ReqDoc: "Satisfaction Survey"},
			},
			Participation: Participation{
				Options:       "Sweat equity hours, Provide lunch, Site cleanup",
				Documentation: "Partner Agreement Clause 4.1",
			},
		},
		Model:       "blended",
		QCFrequency: "milestone",
		Procurement: Procurement{
			SelectionMethod:   "Preferred Vendor List",
			MinQualifications: "State License, General Liability Insurance ($1M)",
			RequiredDocs:      map[string]bool{"w9": true, "coi": true, "bonding": false, "warranty": true},
		},
		VolunteerStandards: VolunteerStandards{
			AllowedScopes: "Painting, Landscaping, Demolition (non-structural)",
			Supervision:   "Site supervisor must be present at all times",
			Training:      "Online safety course + on-site orientation",
		},
		Safety: Safety{
			RiskScreening:               "Asbestos, Lead, Structural Integrity, Pet Safety",
			SafetyPlan:                  "Daily tailgate talks, PPE enforcement, Incident Reporting Log",
			SpecialtyContractorTriggers: "Electrical, Plumbing, HVAC, Roofs > 1 story",
		},
		KPIs: map[string]bool{
			"homesServed":        true,
			"avgCost":            true,
			"repairTimeline":     false,
			"clientSatisfaction": true,
			"safetyIncidents":    false,
		},
		ReportingSchedule: "monthly",
		Sustainability: Sustainability{
			FundingMix:      "40% Grants, 30% Store Profits, 30% Donations",
			CostControls:    "Change orders >$500 require ED approval",
			PipelineTargets: "15 homes/year, Avg $10k/home",
		},
		Pricing: Pricing{
			ModelType:         "grant",
			CalculationMethod: "Project Cost + 10% Admin",
			RepaymentTerms:    "0% interest, forgivable after 5 years",
			HardshipPolicy:    "Deferral available for medical emergencies",
		},
		Version:     Version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}
}
