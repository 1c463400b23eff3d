package going

import (
	"regexp"
	"strings"
	"time"
)

var ordinalSuffix = regexp.MustCompile(`(?i)(\d{1,2})(st|nd|rd|th)\b`)

// ParseUpdated attempts to parse the date of an "Updated: ..." line.
// Returns time.Time{} (zero value) if parsing fails.
// Supports formats: "Monday 4th March 2024 08:00", "4 March 2024",
// "04/03/2024 08:00", "04/03/2024"
func ParseUpdated(text string) time.Time {
	text = strings.TrimSpace(ordinalSuffix.ReplaceAllString(text, "$1"))
	text = strings.ReplaceAll(text, " at ", " ")
	text = strings.TrimSuffix(strings.TrimSpace(text), ".")
	if text == "" {
		return time.Time{}
	}

	// Drop a leading weekday name
	if fields := strings.Fields(text); len(fields) > 1 {
		if _, ok := weekdays[strings.ToLower(strings.TrimSuffix(fields[0], ","))]; ok {
			text = strings.Join(fields[1:], " ")
		}
	}

	layouts := []string{
		"2 January 2006 15:04",
		"2 January 2006 15.04",
		"2 January 2006",
		"2 Jan 2006 15:04",
		"2 Jan 2006",
		"02/01/2006 15:04",
		"02/01/2006",
		"2006-01-02T15:04:05Z07:00",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, text, london); err == nil {
			return t.UTC()
		}
	}

	// Could not parse, return zero time
	return time.Time{}
}

var weekdays = map[string]struct{}{
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
	"mon": {}, "tue": {}, "wed": {}, "thu": {}, "fri": {}, "sat": {}, "sun": {},
}

// london is the racecourse's local time; falls back to UTC when tzdata is
// unavailable
var london = func() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		return time.UTC
	}
	return loc
}()
