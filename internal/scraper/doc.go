// Package scraper provides HTTP fetching and pattern extraction for Cheltenham
// going reports.
//
// Each source adapter pairs a fixed URL with a pure parse function that turns
// a page body into a going.Report. None of the sources publish a structured
// feed, so parsing is best-effort: the page is reduced to a plain text view and
// scanned for GoingStick readings and going descriptions next to course names.
// Parse functions never fail; a page with nothing recognisable yields a report
// with no courses. Only fetch-level failures (network errors, non-2xx status,
// timeouts) are returned as errors.
package scraper
