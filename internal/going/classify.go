package going

import (
	"math"
	"strconv"
)

// GoingStick scale bounds
const (
	MinReading = 1.0
	MaxReading = 15.0
)

// Going descriptions on the official BHA GoingStick scale
const (
	Heavy      = "Heavy"
	Soft       = "Soft"
	GoodToSoft = "Good to Soft"
	Good       = "Good"
	GoodToFirm = "Good to Firm"
	Firm       = "Firm"
	Hard       = "Hard"
)

// band is a half-open [lower, next band's lower) range on the scale
type band struct {
	lower float64
	label string
}

// bands are ordered from firmest to softest so the first lower bound that
// the reading reaches wins
var bands = []band{
	{13.0, Hard},
	{11.0, Firm},
	{9.0, GoodToFirm},
	{7.0, Good},
	{5.0, GoodToSoft},
	{3.0, Soft},
}

// Classify converts a GoingStick reading to a going description.
// Boundary values belong to the upper band: 3.0 is Soft, not Heavy.
// Anything below 3.0, including out-of-domain values, is Heavy; callers
// should check ValidReading first.
func Classify(v float64) string {
	for _, b := range bands {
		if v >= b.lower {
			return b.label
		}
	}
	return Heavy
}

// ValidReading reports whether v lies on the GoingStick scale
func ValidReading(v float64) bool {
	return !math.IsNaN(v) && v >= MinReading && v <= MaxReading
}

// Reading returns v as an optional reading, or nil when v is off the scale
func Reading(v float64) *float64 {
	if !ValidReading(v) {
		return nil
	}
	return &v
}

// ParseReading parses a scraped numeric token into an optional reading.
// Unparseable or off-scale values yield nil.
func ParseReading(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return Reading(v)
}
