// Package eligibility shapes the fetched scheme list for the dashboard tabs.
// Eligibility itself is decided by the data service; nothing here reads the profile.
package eligibility

import (
	"strings"

	"sahayakseva/backend/models"
)

const All = "all"

type Tab struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type View struct {
	Category string          `json:"category"`
	Schemes  []models.Scheme `json:"schemes"`
	Count    int             `json:"count"`
	Tabs     []Tab           `json:"tabs"`
}

// Filter passes everything through for "all" (or empty) and otherwise keeps exact category matches.
func Filter(schemes []models.Scheme, category string) []models.Scheme {
	if category == "" || category == All {
		return append([]models.Scheme{}, schemes...)
	}
	out := []models.Scheme{}
	for _, s := range schemes {
		if string(s.Category) == category {
			out = append(out, s)
		}
	}
	return out
}

// Counts returns the tab labels: "all" first, then every known category, zeros included.
func Counts(schemes []models.Scheme) []Tab {
	per := map[models.Category]int{}
	for _, s := range schemes {
		per[s.Category]++
	}
	tabs := make([]Tab, 0, len(models.Categories)+1)
	tabs = append(tabs, Tab{Category: All, Count: len(schemes)})
	for _, c := range models.Categories {
		tabs = append(tabs, Tab{Category: string(c), Count: per[c]})
	}
	return tabs
}

// Derive builds the dashboard view. The selector is matched exactly; only an
// empty selector means "all".
func Derive(schemes []models.Scheme, category string) View {
	if category == "" {
		category = All
	}
	filtered := Filter(schemes, category)
	return View{
		Category: category,
		Schemes:  filtered,
		Count:    len(filtered),
		Tabs:     Counts(schemes),
	}
}

// FirstName is the dashboard greeting name: the first word of the full name, or "User".
func FirstName(fullName string) string {
	if f := strings.Fields(fullName); len(f) > 0 {
		return f[0]
	}
	return "User"
}
