package scraper

import (
	"github.com/pfrederiksen/cheltenham-going/internal/going"
)

// officialGoing is the course name used when a source gives one going for
// the whole meeting
const officialGoing = "Official Going"

// ParseRacingPost extracts the meeting going from a Racing Post racecard.
// Racecards carry a single "Going: ..." line and sometimes a GoingStick
// reading, so the report has at most one course entry.
func ParseRacingPost(body string) going.Report {
	p := newPage(body)

	var description string
	if m := officialGoingPattern.FindStringSubmatch(p.text); m != nil {
		description = cleanDescription(m[1])
	}

	var stick *float64
	var stickText string
	if m := goingStickPattern.FindStringSubmatch(p.text); m != nil {
		stick = going.ParseReading(m[1])
		stickText = m[0]
	}

	report := going.Report{}
	if course, ok := going.NewCourse(officialGoing, stick, description); ok {
		report.Courses = []going.Course{course}
		report.RawText = joinRaw(description, stickText)
		report.AsOf = findUpdated(p.text)
	}

	return report
}
