package export

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"sort"
	"strings"
	"time"

	"catalog/api/internal/manual"
)

// policyMapOrder fixes the row order of the policy map table.
var policyMapOrder = []string{
	"governance", "finance", "hr", "eligibility", "safety", "procurement", "recordKeeping",
}

var wordTemplate = template.Must(template.New("word").Parse(wordDocTemplate))

type wordPolicyRow struct {
	Category string
	Org      bool
	Program  bool
	Details  []string
}

type wordTopic struct {
	Label   string
	Content string
}

type wordFactor struct {
	Label  string
	Weight int
}

type wordData struct {
	Doc                manual.Data
	Date               string
	PolicyRows         []wordPolicyRow
	Topics             []wordTopic
	IntakeChannels     string
	Factors            []wordFactor
	RequiredDocs       string
	KPIs               []string
	ParticipationLabel string
	CatalogReference   string
}

// ExportManualDoc renders the manual as a Word-compatible HTML document. The
// BOM prefix and the msword MIME type make word processors open it natively.
func ExportManualDoc(doc manual.Data) (*Result, error) {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	if err := wordTemplate.Execute(&buf, buildWordData(doc)); err != nil {
		return nil, fmt.Errorf("render manual doc: %w", err)
	}
	return &Result{
		Data:     buf.Bytes(),
		Filename: manualDocFilename(doc.OrgName),
		MimeType: "application/msword",
	}, nil
}

func buildWordData(doc manual.Data) wordData {
	data := wordData{
		Doc:              doc,
		Date:             doc.Governance.ApprovalDate,
		CatalogReference: "Not Defined",
	}
	if data.Date == "" {
		data.Date = time.Now().Format("1/2/2006")
	}
	if doc.ConstructionActivities.HasCatalog != nil && *doc.ConstructionActivities.HasCatalog {
		data.CatalogReference = "Refer to Appendix A: Construction Activities"
	}

	for _, key := range policyMapKeys(doc.PolicyMap) {
		entry := doc.PolicyMap[key]
		row := wordPolicyRow{Category: titleCase(key), Org: entry.Org, Program: entry.Program}
		if entry.Org {
			row.Details = append(row.Details, "Insert affiliate-level policy here.")
		}
		if entry.Program && entry.ProgramDetails != "" {
			row.Details = append(row.Details, entry.ProgramDetails)
		}
		data.PolicyRows = append(data.PolicyRows, row)
	}

	for _, topic := range manual.RequiredTopics() {
		if !doc.PolicyPackage.CoveredTopics[topic.Key] {
			continue
		}
		content := doc.PolicyPackage.TopicContent[topic.Key]
		if content == "" {
			content = "No specific policy text provided."
		}
		data.Topics = append(data.Topics, wordTopic{Label: topic.Label, Content: content})
	}

	data.IntakeChannels = joinEnabled(doc.IntakeMethods, titleCase)
	if data.IntakeChannels == "" {
		data.IntakeChannels = "None selected"
	}

	for _, key := range sortedKeys(doc.PriorityFactors) {
		data.Factors = append(data.Factors, wordFactor{
			Label:  manual.FactorLabel(key),
			Weight: doc.PriorityFactors[key],
		})
	}

	data.RequiredDocs = joinEnabled(doc.Procurement.RequiredDocs, strings.ToUpper)
	for _, key := range sortedKeys(doc.KPIs) {
		if doc.KPIs[key] {
			data.KPIs = append(data.KPIs, titleCase(splitCamel(key)))
		}
	}

	switch doc.ClientServices.Participation.Required {
	case "required":
		data.ParticipationLabel = "Required"
	case "not_required":
		data.ParticipationLabel = "Not Required (Recommended)"
	default:
		data.ParticipationLabel = "N/A"
	}

	return data
}

// policyMapKeys returns the table's fixed ordering with any extra categories
// appended alphabetically.
func policyMapKeys(m map[string]manual.PolicyMapEntry) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, key := range policyMapOrder {
		if _, ok := m[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	extras := make([]string, 0)
	for key := range m {
		if !seen[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	return append(keys, extras...)
}

func manualDocFilename(orgName string) string {
	org := regexp.MustCompile(`\s+`).ReplaceAllString(strings.TrimSpace(orgName), "_")
	if org == "" {
		return "Repair_Manual_Draft.doc"
	}
	return fmt.Sprintf("Repair_Manual_%s_Draft.doc", org)
}

func joinEnabled(m map[string]bool, format func(string) string) string {
	parts := make([]string, 0, len(m))
	for _, key := range sortedKeys(m) {
		if m[key] {
			parts = append(parts, format(key))
		}
	}
	return strings.Join(parts, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func splitCamel(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// wordDocTemplate carries the office namespaces and print CSS that make word
// processors treat the HTML as a native document.
const wordDocTemplate = `<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>
<head>
<style>
  @page { size: 8.5in 11in; margin: 1.0in; }
  body { font-family: Arial, sans-serif; font-size: 9pt; line-height: 13pt; color: #000000; }
  .cover-page { text-align: center; padding-top: 3in; page-break-after: always; background-color: #00467F; color: white; height: 9in; }
  .title { font-family: 'Arial Black', Arial, sans-serif; font-size: 38pt; font-weight: bold; color: #FFFFFF; }
  .subtitle { font-family: Arial, sans-serif; font-size: 24pt; font-weight: bold; color: #FFFFFF; margin-top: 20pt; }
  .edition { font-size: 14pt; margin-top: 40pt; color: #FFFFFF; }
  h1 { font-size: 24pt; margin-top: 13pt; page-break-before: always; }
  h2 { font-size: 14pt; font-weight: bold; margin-top: 13pt; }
  h3 { font-size: 11pt; font-weight: bold; margin-top: 13pt; }
  p { margin-top: 3pt; margin-bottom: 3pt; }
  ul, ol { margin-top: 3pt; margin-bottom: 3pt; }
  li { margin-bottom: 3pt; }
  table { width: 100%; border-collapse: collapse; margin-top: 10pt; font-size: 9pt; }
  th, td { border: 1px solid #000000; padding: 6px; vertical-align: top; text-align: left; }
  th { font-weight: bold; background-color: #f0f0f0; }
</style>
<title>{{.Doc.OrgName}} Repair Manual</title>
</head>
<body>
<div class="cover-page">
  <div class="title">Policies and Procedures Manual</div>
  <div class="subtitle">Repairs</div>
  <div class="edition">
    {{.Doc.OrgName}}<br/>
    Version {{if .Doc.Governance.PolicyVersion}}{{.Doc.Governance.PolicyVersion}}{{else}}1.0{{end}}<br/>
    Date: {{.Date}}
  </div>
</div>

<h1>1. Introduction &amp; Foundations</h1>
<p><strong>Affiliate:</strong> {{.Doc.OrgName}}</p>
<p><strong>Address:</strong> {{if .Doc.OrgAddress}}{{.Doc.OrgAddress}}{{else}}N/A{{end}}</p>
<p><strong>Phone:</strong> {{if .Doc.OrgPhone}}{{.Doc.OrgPhone}}{{else}}N/A{{end}} | <strong>Email:</strong> {{if .Doc.OrgEmail}}{{.Doc.OrgEmail}}{{else}}N/A{{end}}</p>
<p><strong>Service Area:</strong> {{.Doc.ServiceArea}}</p>
<h3>Key Staff</h3>
<ul>
{{range .Doc.Staff}}<li><strong>{{.Name}}</strong> - {{.Title}}</li>
{{end}}</ul>

<h2>2. Affiliate Policy Map</h2>
<table border="1" cellpadding="5" cellspacing="0">
<tr><th>Category</th><th>Org Level</th><th>Program Level</th><th>Details</th></tr>
{{range .PolicyRows}}<tr>
  <td>{{.Category}}</td>
  <td align="center">{{if .Org}}Yes{{end}}</td>
  <td align="center">{{if .Program}}Yes{{end}}</td>
  <td>{{range $i, $d := .Details}}{{if $i}}<br>{{end}}{{$d}}{{end}}</td>
</tr>
{{end}}</table>

<h2>3. Program Policies</h2>
{{range .Topics}}<h3>{{.Label}}</h3>
<p>{{.Content}}</p>
{{end}}

<h2>4. Pricing &amp; Repayment</h2>
<p><strong>Model:</strong> {{if .Doc.Pricing.ModelType}}{{.Doc.Pricing.ModelType}}{{else}}N/A{{end}}</p>
<p><strong>Calculation:</strong> {{if .Doc.Pricing.CalculationMethod}}{{.Doc.Pricing.CalculationMethod}}{{else}}N/A{{end}}</p>
<p><strong>Terms:</strong> {{if .Doc.Pricing.RepaymentTerms}}{{.Doc.Pricing.RepaymentTerms}}{{else}}N/A{{end}}</p>
<p><strong>Financial Cap:</strong> ${{.Doc.FinancialCap}}</p>

<h2>5. Scope of Services</h2>
<p><strong>Construction Activities:</strong> {{.CatalogReference}}</p>
<p><strong>Exclusions:</strong> {{if .Doc.ConstructionActivities.IneligibleScopes}}{{.Doc.ConstructionActivities.IneligibleScopes}}{{else}}N/A{{end}}</p>
<p><strong>Permits:</strong> {{if .Doc.ConstructionActivities.PermitTriggers}}{{.Doc.ConstructionActivities.PermitTriggers}}{{else}}N/A{{end}}</p>

<h2>6. Client Screening &amp; Selection</h2>
<h3>Intake</h3>
<p><strong>Channels:</strong> {{.IntakeChannels}}</p>
<h3>Assessment &amp; Selection</h3>
<p><strong>Assessment Protocol:</strong> {{if .Doc.ProjectFeasibility.AssessmentProtocol}}{{.Doc.ProjectFeasibility.AssessmentProtocol}}{{else}}N/A{{end}}</p>
<p><strong>Selection Authority:</strong> {{if .Doc.ProjectFeasibility.SelectionAuthority}}{{.Doc.ProjectFeasibility.SelectionAuthority}}{{else}}N/A{{end}}</p>
<p><strong>Decision Documentation:</strong> {{if .Doc.ProjectFeasibility.SelectionArtifact}}{{.Doc.ProjectFeasibility.SelectionArtifact}}{{else}}N/A{{end}}</p>
<p><strong>Feasibility Limits:</strong> {{if .Doc.ProjectFeasibility.FeasibilityLimits}}{{.Doc.ProjectFeasibility.FeasibilityLimits}}{{else}}N/A{{end}}</p>
<h3>Prioritization</h3>
<p>Applications are prioritized based on the following weighted criteria:</p>
<ul>
{{range .Factors}}<li><strong>{{.Label}}:</strong> Weight {{.Weight}}</li>
{{end}}</ul>

<h2>7. Client Services &amp; Participation</h2>
<p><strong>Participation Requirement:</strong> {{.ParticipationLabel}}</p>
<p><strong>Options &amp; Accommodations:</strong> {{if .Doc.ClientServices.Participation.Options}}{{.Doc.ClientServices.Participation.Options}}{{else}}N/A{{end}}</p>
<p><strong>Documentation Method:</strong> {{if .Doc.ClientServices.Participation.Documentation}}{{.Doc.ClientServices.Participation.Documentation}}{{else}}N/A{{end}}</p>

<h2>8. Project Lifecycle</h2>
<h3>Stages</h3>
<ol>
{{range .Doc.ClientServices.Stages}}<li><strong>{{.Name}}</strong> (Trigger: {{.ReqDoc}})</li>
{{end}}</ol>

<h2>9. Workforce &amp; Safety</h2>
<p><strong>Delivery Model:</strong> {{if .Doc.Model}}{{.Doc.Model}}{{else}}N/A{{end}}</p>
<p><strong>QC Frequency:</strong> {{if .Doc.QCFrequency}}{{.Doc.QCFrequency}}{{else}}N/A{{end}}</p>
<h3>Contractors</h3>
<p><strong>Selection Method:</strong> {{if .Doc.Procurement.SelectionMethod}}{{.Doc.Procurement.SelectionMethod}}{{else}}N/A{{end}}</p>
<p><strong>Min Qualifications:</strong> {{if .Doc.Procurement.MinQualifications}}{{.Doc.Procurement.MinQualifications}}{{else}}N/A{{end}}</p>
<p><strong>Required Docs:</strong> {{.RequiredDocs}}</p>
<h3>Volunteers</h3>
<p><strong>Allowed Scopes:</strong> {{if .Doc.VolunteerStandards.AllowedScopes}}{{.Doc.VolunteerStandards.AllowedScopes}}{{else}}N/A{{end}}</p>
<p><strong>Supervision:</strong> {{if .Doc.VolunteerStandards.Supervision}}{{.Doc.VolunteerStandards.Supervision}}{{else}}N/A{{end}}</p>
<p><strong>Training:</strong> {{if .Doc.VolunteerStandards.Training}}{{.Doc.VolunteerStandards.Training}}{{else}}N/A{{end}}</p>
<h3>Safety</h3>
<p><strong>Risk Screening:</strong> {{if .Doc.Safety.RiskScreening}}{{.Doc.Safety.RiskScreening}}{{else}}N/A{{end}}</p>
<p><strong>Safety Plan:</strong> {{if .Doc.Safety.SafetyPlan}}{{.Doc.Safety.SafetyPlan}}{{else}}N/A{{end}}</p>
<p><strong>Specialty Contractor Triggers:</strong> {{if .Doc.Safety.SpecialtyContractorTriggers}}{{.Doc.Safety.SpecialtyContractorTriggers}}{{else}}N/A{{end}}</p>

<h2>10. Sustainability &amp; Performance</h2>
<p><strong>Funding Mix:</strong> {{if .Doc.Sustainability.FundingMix}}{{.Doc.Sustainability.FundingMix}}{{else}}N/A{{end}}</p>
<p><strong>Cost Controls:</strong> {{if .Doc.Sustainability.CostControls}}{{.Doc.Sustainability.CostControls}}{{else}}N/A{{end}}</p>
<p><strong>Pipeline Targets:</strong> {{if .Doc.Sustainability.PipelineTargets}}{{.Doc.Sustainability.PipelineTargets}}{{else}}N/A{{end}}</p>
<p><strong>Reporting Schedule:</strong> {{.Doc.ReportingSchedule}}</p>
<p><strong>Feedback Mechanism:</strong> {{.Doc.FeedbackMechanism}}</p>
<p><strong>Tracked KPIs:</strong></p>
<ul>
{{range .KPIs}}<li>{{.}}</li>
{{end}}</ul>

<h2>11. Compliance Declaration</h2>
<p><strong>Policy Alignment:</strong> {{if .Doc.Policy33Aligned}}Compliant{{else}}Pending{{end}}</p>
<p><strong>Governance:</strong> Approved by {{.Doc.Governance.ApproverRole}} on {{.Doc.Governance.ApprovalDate}}.</p>
</body>
</html>`
