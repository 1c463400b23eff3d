package scraper

import (
	"github.com/pfrederiksen/cheltenham-going/internal/going"
)

// ParseJockeyClub extracts going from the Jockey Club Cheltenham going page.
//
// The going widget is injected by TurfTrax script at runtime, but the page
// source usually carries the same text in a script block or noscript
// fallback, e.g.
//
//	Going: Soft (Good to Soft in places)
//	GoingStick: Old Course: 5.8, New Course: 5.4, Cross Country: 4.9
func ParseJockeyClub(body string) going.Report {
	p := newPage(body)

	report := going.Report{
		RawText: joinRaw(append(
			p.scriptsMentioning("going", "goingstick"),
			goingContentPattern.FindAllString(p.text, -1)...,
		)...),
		Courses: buildCourses(p.text),
	}
	if len(report.Courses) > 0 {
		report.AsOf = findUpdated(p.text)
	}

	return report
}
