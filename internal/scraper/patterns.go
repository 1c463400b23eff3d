package scraper

import (
	"regexp"
	"strings"
	"time"

	"github.com/pfrederiksen/cheltenham-going/internal/going"
)

// courseToken names a course segment and the tokens sources use for it
type courseToken struct {
	name    string
	pattern string
}

// Course tokens, in the order courses are reported. The leading word is
// case-sensitive so that prose ("the new stand") is not read as a label.
var (
	oldCourse   = courseToken{"Old Course", `\bOld(?i:\s+Course)?\b|\bO/C\b`}
	newCourse   = courseToken{"New Course", `\bNew(?i:\s+Course)?\b|\bN/C\b`}
	crossCourse = courseToken{"Cross Country", `\bCross(?i:\s+Country)?(?i:\s+Course)?\b|\bC/C\b|\bXC\b`}

	courseTokens = []courseToken{oldCourse, newCourse, crossCourse}
)

const (
	// number matches a GoingStick-looking value; range checks happen later
	number = `(\d{1,2}(?:\.\d+)?)`

	goingTerm   = `(?:Heavy|Soft|Good|Firm|Yielding|Hard)`
	goingBand   = goingTerm + `(?:\s+to\s+` + goingTerm + `)?`
	goingPhrase = `(?i:` + goingBand + `(?:\s*\([^)\n]{1,80}\)|,?\s+` + goingBand + `\s+in\s+places)?)`

	// labelSep separates a label from its value: "Old: 5.8", "Old Course 5.8"
	labelSep = `\s*[:=\-–]?\s*`

	// descriptionSep is the explicit separator a course description needs:
	// "Old Course: Soft", "New - Heavy"
	descriptionSep = `\s*[:\-–]\s*`

	// pairSep separates consecutive course entries
	pairSep = `[,;/|\s]*`
)

var (
	// readingsPattern matches Old and New readings with an optional Cross
	// Country reading, in that order
	readingsPattern = regexp.MustCompile(`(?:` + oldCourse.pattern + `)` + labelSep + number +
		pairSep + `(?:` + newCourse.pattern + `)` + labelSep + number +
		`(?:` + pairSep + `(?:` + crossCourse.pattern + `)` + labelSep + number + `)?`)

	// descriptionPatterns match a going description right after a course token
	descriptionPatterns = func() map[string]*regexp.Regexp {
		m := make(map[string]*regexp.Regexp, len(courseTokens))
		for _, c := range courseTokens {
			m[c.name] = regexp.MustCompile(`(?:` + c.pattern + `)` + descriptionSep + `(` + goingPhrase + `)`)
		}
		return m
	}()

	officialGoingPattern = regexp.MustCompile(`(?i)\b(?:Official\s+)?Going\b` + labelSep + `(` + goingPhrase + `)`)
	goingStickPattern    = regexp.MustCompile(`(?i)\bGoingStick\b(?:\s+reading)?` + labelSep + number)

	updatedPattern = regexp.MustCompile(`(?i)\b(?:updated|as\s+of|issued)\b\s*(?:on)?\s*:?\s*` +
		`((?:[A-Za-z]+,?\s+)?\d{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]+\s+\d{4}(?:,?\s+(?:at\s+)?\d{1,2}[:.]\d{2})?` +
		`|\d{2}/\d{2}/\d{4}(?:\s+\d{1,2}:\d{2})?)`)

	// goingContentPattern finds prose lines that talk about the ground
	goingContentPattern = regexp.MustCompile(`(?i)(?:going|ground)[^\n]{0,500}?(?:soft|good|firm|heavy|yielding)[^\n]{0,200}`)
)

// findReadings returns the first Old/New/Cross reading set in document order,
// keyed by course name. Off-scale values are left out.
func findReadings(text string) map[string]*float64 {
	readings := make(map[string]*float64, len(courseTokens))

	m := readingsPattern.FindStringSubmatch(text)
	if m == nil {
		return readings
	}

	for i, c := range courseTokens {
		if m[i+1] == "" {
			continue
		}
		if r := going.ParseReading(m[i+1]); r != nil {
			readings[c.name] = r
		}
	}
	return readings
}

// findDescription returns the first going description next to a course token
func findDescription(text string, c courseToken) string {
	m := descriptionPatterns[c.name].FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return cleanDescription(m[1])
}

// cleanDescription collapses whitespace inside a captured description
func cleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// buildCourses pairs readings and descriptions for every course token that
// has at least one of them
func buildCourses(text string) []going.Course {
	readings := findReadings(text)

	var courses []going.Course
	for _, c := range courseTokens {
		if course, ok := going.NewCourse(c.name, readings[c.name], findDescription(text, c)); ok {
			courses = append(courses, course)
		}
	}
	return courses
}

// findUpdated returns the first "Updated ..." timestamp in text, or zero
func findUpdated(text string) time.Time {
	m := updatedPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}
	}
	return going.ParseUpdated(strings.ReplaceAll(m[1], ",", ""))
}
