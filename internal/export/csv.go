package export

import (
	"fmt"
	"strings"

	"catalog/api/internal/selection"
)

// exportCSV builds one row per flattened activity with the column set chosen
// by the request. Every field is quoted with embedded quotes doubled.
func (s *Service) exportCSV(req Request) *Result {
	header := make([]string, 0, 12)
	if req.Levels.Pillar {
		header = append(header, "Pillar")
	}
	if req.Levels.SubCategory {
		header = append(header, "Sub-Category")
	}
	if req.Levels.Type {
		header = append(header, "Type")
	}
	header = append(header, "Activity", "Status")
	if req.Elements.Criticality {
		header = append(header, "Priority", "Urgency", "Condition")
	}
	if req.Elements.Definitions {
		if req.Levels.Pillar {
			header = append(header, "Pillar Definition")
		}
		if req.Levels.SubCategory {
			header = append(header, "Sub-Category Definition")
		}
		if req.Levels.Type {
			header = append(header, "Type Definition")
		}
	}
	if req.Elements.Notes {
		header = append(header, "Notes")
	}

	var b strings.Builder
	writeCSVRow(&b, header)

	for _, row := range s.tax.Flatten() {
		sel := s.sels.Get(row.Activity.ID)
		fields := make([]string, 0, len(header))
		if req.Levels.Pillar {
			fields = append(fields, row.PillarName)
		}
		if req.Levels.SubCategory {
			fields = append(fields, row.SubCategoryName)
		}
		if req.Levels.Type {
			fields = append(fields, row.TypeName)
		}
		fields = append(fields, row.Activity.Name, renderStatus(sel.Status))
		if req.Elements.Criticality {
			priority := ""
			if p, ok := s.sels.Priority(row.Activity); ok {
				priority = p.Label()
			}
			fields = append(fields,
				priority,
				string(sel.EffectiveUrgency(row.Activity.DefaultUrgency)),
				string(sel.EffectiveCondition(row.Activity.DefaultCondition)),
			)
		}
		if req.Elements.Definitions {
			if req.Levels.Pillar {
				fields = append(fields, row.PillarDescription)
			}
			if req.Levels.SubCategory {
				fields = append(fields, row.SubCategoryDescription)
			}
			if req.Levels.Type {
				fields = append(fields, row.TypeDescription)
			}
		}
		if req.Elements.Notes {
			fields = append(fields, sel.Notes)
		}
		writeCSVRow(&b, fields)
	}

	return &Result{
		Data:     []byte(b.String()),
		Filename: fmt.Sprintf("eligible-activities-%s.csv", s.now().Format("2006-01-02")),
		MimeType: "text/csv; charset=utf-8",
	}
}

// renderStatus formats a selection status for display: upper-cased with
// underscores replaced by spaces, "UNSELECTED" when no status was recorded.
func renderStatus(st selection.Status) string {
	if st == "" {
		return "UNSELECTED"
	}
	return strings.ToUpper(strings.ReplaceAll(string(st), "_", " "))
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
