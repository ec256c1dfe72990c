package automation

import (
	"fmt"
	"time"
)

const isoLayout = "2006-01-02"

// Each site renders calendar days differently. Agoda tags days with a
// machine-readable date attribute; the others expose only human-readable
// ARIA labels that have to be derived from the ISO date. All of these are
// pure: the same input always yields the same selector.

// agodaDateSelector matches a calendar day by its data attribute,
// e.g. [data-selenium-date="2025-02-06"].
func agodaDateSelector(iso string) string {
	return fmt.Sprintf(`[data-selenium-date="%s"]`, iso)
}

// mmtDateSelector matches a MakeMyTrip day-picker cell by its ARIA label,
// e.g. "Thu Feb 06 2025".
func mmtDateSelector(iso string) (string, error) {
	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", iso, err)
	}
	return fmt.Sprintf(`.DayPicker-Day[aria-label="%s"]`, t.Format("Mon Jan 02 2006")), nil
}

// hotelsDateLabel renders the date the way Hotels.com labels its day
// buttons, e.g. "6 February, 2025".
func hotelsDateLabel(iso string) (string, error) {
	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", iso, err)
	}
	return t.Format("2 January, 2006"), nil
}

// expediaDateLabel renders the date the way Expedia labels its day buttons,
// e.g. "6 February 2025".
func expediaDateLabel(iso string) (string, error) {
	t, err := time.Parse(isoLayout, iso)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", iso, err)
	}
	return t.Format("2 January 2006"), nil
}
