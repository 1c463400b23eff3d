package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/cheltenham-going/internal/api"
	"github.com/pfrederiksen/cheltenham-going/internal/resolver"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *resolver.Result, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the same envelope the HTTP endpoint serves
func writeJSON(w io.Writer, result *resolver.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(api.Envelope(result, result.ResolvedAt))
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *resolver.Result, verbose bool) error {
	if !result.Available() {
		fmt.Fprintln(w, result.Message)
	} else {
		report := result.Report
		fmt.Fprintf(w, "Cheltenham going (source: %s, as of %s)\n\n",
			report.Source, report.AsOf.UTC().Format("Mon 2 Jan 2006 15:04 MST"))

		for _, c := range report.Courses {
			stick := "-"
			if c.GoingStick != nil {
				stick = fmt.Sprintf("%.1f", *c.GoingStick)
			}
			fmt.Fprintf(w, "  %-15s %5s  %s\n", c.Name, stick, c.Going)
		}
	}

	if verbose {
		fmt.Fprintln(w, "\nSources:")
		for _, out := range result.Outcomes {
			line := fmt.Sprintf("  %-11s %-7s %s", out.Source, out.Status, out.Duration.Round(time.Millisecond))
			if out.Err != nil {
				line += "  " + out.Err.Error()
			}
			fmt.Fprintln(w, line)
		}
	}

	return nil
}
