package automation

import "sort"

// Filter maps: one per site, from the curated user-facing filter vocabulary
// to that site's element-matching pattern. The vocabulary is the external
// contract clients use in user_filters; a name absent from a site's map is
// silently skipped for that site.
var filterMappings = map[string]map[string]string{
	LabelAgoda: {
		// Star ratings
		"5 star": `[aria-label="5-Star rating"]`,
		"4 star": `[aria-label="4-Star rating"]`,
		"3 star": `[aria-label="3-Star rating"]`,
		"2 star": `[aria-label="2-Star rating"]`,
		"1 star": `[aria-label="1-Star rating"]`,

		// Payment options
		"free cancellation":        `[data-selenium="filter-item-text"]:has-text("Free cancellation")`,
		"pay at hotel":             `[data-selenium="filter-item-text"]:has-text("Pay at the hotel")`,
		"book now pay later":       `[data-selenium="filter-item-text"]:has-text("Book now, pay later")`,
		"pay now":                  `[data-selenium="filter-item-text"]:has-text("Pay now")`,
		"book without credit card": `[data-selenium="filter-item-text"]:has-text("Book without credit card")`,

		// Distance bands
		"inside city center": `[data-selenium="filter-item-text"]:has-text("Inside city center")`,
		"less than 2km":      `[data-selenium="filter-item-text"]:has-text("<2 km to center")`,
		"2-5km":              `[data-selenium="filter-item-text"]:has-text("2-5 km to center")`,
		"5-10km":             `[data-selenium="filter-item-text"]:has-text("5-10 km to center")`,
		"more than 10km":     `[data-selenium="filter-item-text"]:has-text(">10 km to center")`,

		// Special deals
		"secret deals": `[data-element-name="search-sort-secret-deals"]`,
	},
	LabelMMT: {
		"5 star":            `label:has-text("5 Star")`,
		"4 star":            `label:has-text("4 Star")`,
		"3 star":            `label:has-text("3 Star")`,
		"free cancellation": `label:has-text("Free Cancellation")`,
	},
	LabelHotels: {
		"5 star":            `label.uitk-button-toggle-content:has-text("5")`,
		"4 star":            `label.uitk-button-toggle-content:has-text("4")`,
		"3 star":            `label.uitk-button-toggle-content:has-text("3")`,
		"free cancellation": `label:has-text("Fully refundable property")`,
	},
	LabelExpedia: {
		"5 star":            `label.uitk-button-toggle-content:has-text("5")`,
		"4 star":            `label.uitk-button-toggle-content:has-text("4")`,
		"3 star":            `label.uitk-button-toggle-content:has-text("3")`,
		"free cancellation": `label:has-text("Fully refundable property")`,
	},
}

// LookupFilter returns the element pattern for a filter name on a site.
func LookupFilter(site, name string) (string, bool) {
	m, ok := filterMappings[site]
	if !ok {
		return "", false
	}
	pattern, ok := m[name]
	return pattern, ok
}

// Vocabulary lists every filter name at least one site understands, sorted.
// Sent to clients so they know what user_filters may contain.
func Vocabulary() []string {
	seen := make(map[string]struct{})
	for _, m := range filterMappings {
		for name := range m {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
