// Package going defines the going report model for Cheltenham racecourse.
//
// A Report holds one entry per course segment (Old Course, New Course, Cross
// Country) with the official going description and, when published, the
// GoingStick penetrometer reading. The package also provides the BHA band
// classifier that turns a GoingStick reading into a going description.
package going
