// internal/models/category.go
package models

import "strings"

// ESG categories used by the dashboard.
const (
	CategoryEmissions     = "emissions"
	CategoryEnergy        = "energy"
	CategoryWater         = "water"
	CategoryWaste         = "waste"
	CategorySocial        = "social"
	CategoryMain          = "main"
	CategoryRelated       = "related"
	CategoryInfo          = "info"
	CategoryUncategorized = "uncategorized"
)

// TopicCategories lists the subject categories in classification priority order.
var TopicCategories = []string{
	CategoryEmissions,
	CategoryEnergy,
	CategoryWater,
	CategoryWaste,
	CategorySocial,
}

var categoryKeywords = map[string][]string{
	CategoryEmissions: {"carbon", "emission", "ghg", "co2", "greenhouse", "scope 1", "scope 2", "scope 3", "net zero", "net-zero", "decarbon"},
	CategoryEnergy:    {"energy", "renewable", "solar", "wind", "electricity", "power purchase", "efficiency"},
	CategoryWater:     {"water", "wastewater", "drought", "watershed", "hydro"},
	CategoryWaste:     {"waste", "recycl", "circular", "landfill", "packaging"},
	CategorySocial:    {"social", "diversity", "labor", "labour", "human rights", "community", "inclusion", "wellbeing"},
}

// Classify maps free text onto a topic category, or returns fallback when nothing matches.
func Classify(text, fallback string) string {
	lower := strings.ToLower(text)
	for _, category := range TopicCategories {
		for _, kw := range categoryKeywords[category] {
			if strings.Contains(lower, kw) {
				return category
			}
		}
	}
	return fallback
}
