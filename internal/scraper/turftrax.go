package scraper

import (
	"regexp"
	"strings"

	"github.com/pfrederiksen/cheltenham-going/internal/going"
)

// cheltenhamSegmentPattern finds a Cheltenham entry that mentions a course
// segment. A segment stays on its own line so that readings listed for the
// next course are never attributed to Cheltenham; the only exception is a
// bare "Cheltenham" heading, whose readings follow on the next line.
var cheltenhamSegmentPattern = regexp.MustCompile(`(?i)Cheltenham(?:[ \t:]*\n)?.{0,500}?(?:\bOld\b|\bNew\b|\bCross\b).{0,300}`)

// ParseTurfTrax extracts Cheltenham readings from the TurfTrax homepage,
// which lists the latest readings for several courses.
func ParseTurfTrax(body string) going.Report {
	p := newPage(body)

	segments := cheltenhamSegmentPattern.FindAllString(p.text, -1)
	if len(segments) == 0 {
		return going.Report{}
	}

	text := strings.Join(segments, "\n")
	report := going.Report{
		RawText: joinRaw(segments...),
		Courses: buildCourses(text),
	}
	if len(report.Courses) > 0 {
		report.AsOf = findUpdated(text)
	}

	return report
}
