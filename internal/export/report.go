package export

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"catalog/api/internal/selection"
	"catalog/api/internal/taxonomy"
)

//go:embed templates/*.html
var templateFS embed.FS

var reportTemplate *template.Template

func init() {
	content, err := templateFS.ReadFile("templates/report.html")
	if err != nil {
		// Fallback to built-in template if file not found
		reportTemplate = template.Must(template.New("report").Parse(fallbackReportTemplate))
		return
	}
	reportTemplate = template.Must(template.New("report").Parse(string(content)))
}

// ReportItem is one activity line in the printed report.
type ReportItem struct {
	Name      string
	TypeName  string
	Priority  string
	Urgency   string
	Condition string
	Notes     string
}

// ReportGroup is one sub-category block within a pillar.
type ReportGroup struct {
	ID          string
	Name        string
	Description string
	Items       []ReportItem
}

// ReportPillar groups a section's items by pillar.
type ReportPillar struct {
	ID          string
	Name        string
	Description string
	Groups      []ReportGroup
}

// ReportSection is one of the three status sections of the report.
type ReportSection struct {
	Title   string
	Pillars []ReportPillar
}

// ReportData holds everything the report template renders.
type ReportData struct {
	Title           string
	GeneratedAt     time.Time
	Sections        []ReportSection
	ShowPillar      bool
	ShowSubCategory bool
	ShowType        bool
	ShowDefinitions bool
}

var reportSections = []struct {
	title  string
	status selection.Status
}{
	{"Eligible Activities", selection.StatusEligible},
	{"Conditionally Eligible Activities", selection.StatusConditional},
	{"Not Eligible Activities", selection.StatusNotEligible},
}

// renderReport builds the three-section report over the full taxonomy.
// Unselected and N/A activities never appear in it.
func (s *Service) renderReport(req Request) (string, error) {
	data := ReportData{
		Title:           "Eligible Construction Activities",
		GeneratedAt:     s.now(),
		ShowPillar:      req.Levels.Pillar,
		ShowSubCategory: req.Levels.SubCategory,
		ShowType:        req.Levels.Type,
		ShowDefinitions: req.Elements.Definitions,
	}

	for _, sec := range reportSections {
		data.Sections = append(data.Sections, ReportSection{
			Title:   sec.title,
			Pillars: s.sectionPillars(sec.status, req),
		})
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) sectionPillars(status selection.Status, req Request) []ReportPillar {
	pillars := make([]ReportPillar, 0)
	for _, row := range s.tax.Flatten() {
		sel := s.sels.Get(row.Activity.ID)
		if sel.Status != status {
			continue
		}

		item := ReportItem{Name: row.Activity.Name}
		if req.Levels.Type {
			item.TypeName = row.TypeName
		}
		if req.Elements.Criticality {
			u := sel.EffectiveUrgency(row.Activity.DefaultUrgency)
			c := sel.EffectiveCondition(row.Activity.DefaultCondition)
			// Activities whose effective pair is fully N/A carry no badge.
			if !(u == taxonomy.UrgencyNA && c == taxonomy.ConditionNA) {
				if p, ok := taxonomy.PriorityFor(u, c); ok {
					item.Priority = p.Label()
				}
				item.Urgency = string(u)
				item.Condition = string(c)
			}
		}
		if req.Elements.Notes {
			item.Notes = sel.Notes
		}

		// Group by id, not display name: two nodes may share a name.
		if len(pillars) == 0 || pillars[len(pillars)-1].ID != row.PillarID {
			pillars = append(pillars, ReportPillar{
				ID:          row.PillarID,
				Name:        row.PillarName,
				Description: row.PillarDescription,
			})
		}
		p := &pillars[len(pillars)-1]
		if len(p.Groups) == 0 || p.Groups[len(p.Groups)-1].ID != row.SubCategoryID {
			p.Groups = append(p.Groups, ReportGroup{
				ID:          row.SubCategoryID,
				Name:        row.SubCategoryName,
				Description: row.SubCategoryDescription,
			})
		}
		g := &p.Groups[len(p.Groups)-1]
		g.Items = append(g.Items, item)
	}
	return pillars
}

// fallbackReportTemplate is used if the embedded template fails to load
const fallbackReportTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p>{{.GeneratedAt.Format "January 2, 2006"}}</p>
  {{range .Sections}}
  <h2>{{.Title}}</h2>
  {{range .Pillars}}{{range .Groups}}{{range .Items}}
  <p>{{.Name}}{{if .TypeName}} [{{.TypeName}}]{{end}}{{if .Priority}} ({{.Priority}}){{end}}</p>
  {{end}}{{end}}{{end}}
  {{end}}
</body>
</html>`
