package going

import (
	"strings"
	"time"
)

// Source identifies the adapter that produced a report
type Source string

const (
	SourceJockeyClub Source = "jockeyclub"
	SourceRacingPost Source = "racingpost"
	SourceTurfTrax   Source = "turftrax"
	SourceNone       Source = "none"
)

// Course is the going for a single course segment
type Course struct {
	Name       string   `json:"name"`
	Going      string   `json:"going"`
	GoingStick *float64 `json:"goingStick"`
	Detail     string   `json:"detail"`
}

// Report is a resolved going report
type Report struct {
	Source  Source    `json:"source"`
	AsOf    time.Time `json:"asOf"`
	Courses []Course  `json:"courses"`
	RawText string    `json:"rawText"`
}

// Usable reports whether the report carries any course data
func (r *Report) Usable() bool {
	return r != nil && len(r.Courses) > 0
}

// NewCourse builds a course entry from an optional reading and an optional
// source description. The description wins over the label derived from the
// reading. Returns false when neither is present.
func NewCourse(name string, stick *float64, description string) (Course, bool) {
	description = strings.TrimSpace(description)

	c := Course{Name: name, GoingStick: stick}
	switch {
	case description != "":
		c.Going = description
		c.Detail = Qualifier(description)
	case stick != nil:
		c.Going = Classify(*stick)
	default:
		return Course{}, false
	}

	return c, true
}

// Qualifier returns the qualifier of a going description: the parenthesised
// part of "Soft (Heavy in places)" or the trailing clause of "Good to Soft,
// Soft in places". Both yield the "... in places" text.
func Qualifier(description string) string {
	open := strings.Index(description, "(")
	if open < 0 {
		return trailingQualifier(description)
	}
	rest := description[open+1:]
	if end := strings.Index(rest, ")"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// trailingQualifier returns the ", X in places" clause of a description
func trailingQualifier(description string) string {
	comma := strings.LastIndex(description, ",")
	if comma < 0 {
		return ""
	}
	rest := strings.TrimSpace(description[comma+1:])
	if !strings.HasSuffix(strings.ToLower(rest), "in places") {
		return ""
	}
	return rest
}
