package manual

import "strings"

// factorLabels names the prioritization factors shown in exports. Keys not
// listed here fall back to a spaced form of the camelCase key.
var factorLabels = map[string]string{
	"healthSafety":         "Health & Safety Urgency (Home Condition)",
	"lmiHouseholds":        "LMI Households (<=80% AMI)",
	"olderAdults":          "Older Adults (62+)",
	"disabilities":         "People with Disabilities",
	"veterans":             "Veterans",
	"raciallyMarginalized": "Racially Marginalized Communities",
	"persistentPoverty":    "Persistent Poverty / Distressed",
	"femaleHead":           "Female Head of Household",
	"largeFamilies":        "Large Families (5+ members)",
	"mobileHomeowners":     "Manufactured/Mobile Homeowners",
	"ruralHouseholds":      "Rural Households",
	"disasterImpacted":     "Disaster-Impacted",
}

// FactorLabel returns the display label for a prioritization factor key.
func FactorLabel(key string) string {
	if label, ok := factorLabels[key]; ok {
		return label
	}
	return splitCamelCase(key)
}

// requiredTopics is the fixed policy-package topic list, in display order.
var requiredTopics = []struct{ Key, Label string }{
	{"assessment", "Project assessment and selection criteria"},
	{"partnerSelection", "Repair partner selection criteria & process"},
	{"participation", "Owner and household member participation"},
	{"staffing", "Staffing and volunteer participation"},
	{"pricing", "Pricing and repayment model"},
	{"constructionTypes", "Types of construction activities"},
	{"sustainability", "Financial sustainability"},
	{"risk", "Risk management"},
	{"safety", "Safety"},
}

// RequiredTopic is one mandated policy-package topic.
type RequiredTopic struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// RequiredTopics lists the mandated policy-package topics in display order.
func RequiredTopics() []RequiredTopic {
	out := make([]RequiredTopic, 0, len(requiredTopics))
	for _, t := range requiredTopics {
		out = append(out, RequiredTopic{Key: t.Key, Label: t.Label})
	}
	return out
}

func splitCamelCase(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
