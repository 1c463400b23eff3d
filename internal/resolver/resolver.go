// Package resolver produces one authoritative going report by trying going
// sources in trust order.
//
// Sources are attempted strictly one after another. The first source that
// yields at least one course wins and later sources are never contacted.
// Fetch failures, timeouts and empty pages all fall through to the next
// source; when every source is exhausted the result is "not yet available",
// which is the normal state outside the reporting season.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/cheltenham-going/internal/going"
	"github.com/pfrederiksen/cheltenham-going/internal/logger"
	"github.com/pfrederiksen/cheltenham-going/internal/metrics"
)

const (
	// DefaultTimeout bounds each adapter invocation
	DefaultTimeout = 10 * time.Second

	// PendingMessage explains a result with no going data
	PendingMessage = "Going data not yet available. Reports typically published 6 days before racing (~March 4th for the Festival)."
)

// Adapter is a going source
type Adapter interface {
	Source() going.Source
	// Fetch returns an error only for fetch-level failures. A page with no
	// recognisable going yields an empty report and a nil error.
	Fetch(ctx context.Context) (going.Report, error)
}

// Status tags the outcome of one adapter invocation
type Status string

const (
	StatusData   Status = "data"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// Outcome is the tagged result of invoking one adapter
type Outcome struct {
	Source   going.Source
	Status   Status
	Report   going.Report
	Err      error
	Duration time.Duration
}

// Result is the outcome of one resolution. Report is nil when no source had
// data, in which case Message says why. Err is set when the caller's context
// ended before the sources were exhausted; such a result says nothing about
// whether going has been published.
type Result struct {
	Report     *going.Report
	Message    string
	Err        error
	ResolvedAt time.Time
	Outcomes   []Outcome
}

// Available reports whether the result carries going data
func (r *Result) Available() bool {
	return r != nil && r.Report.Usable()
}

// Resolver tries adapters in order until one yields going data
type Resolver struct {
	adapters []Adapter
	timeout  time.Duration
	now      func() time.Time
}

// Option configures a Resolver
type Option func(*Resolver)

// WithTimeout overrides the per-adapter timeout
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithClock overrides the clock used to stamp results
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// New creates a resolver over adapters in priority order
func New(adapters []Adapter, opts ...Option) *Resolver {
	r := &Resolver{
		adapters: adapters,
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve attempts each adapter in order and returns the first usable report,
// tagged with its source. It never returns an error: exhausting every adapter
// is an expected outcome reported through Result.Message.
func (r *Resolver) Resolve(ctx context.Context) *Result {
	result := &Result{
		Outcomes: make([]Outcome, 0, len(r.adapters)),
	}

	for _, a := range r.adapters {
		out := r.attempt(ctx, a)
		result.Outcomes = append(result.Outcomes, out)
		metrics.RecordAdapterAttempt(string(out.Source), string(out.Status), out.Duration)

		fields := logger.Fields{
			"source":      string(out.Source),
			"duration_ms": out.Duration.Milliseconds(),
		}

		switch out.Status {
		case StatusFailed:
			logger.Warn("Going source failed", fields, out.Err)
			continue
		case StatusEmpty:
			logger.Info("Going source returned no courses", fields)
			continue
		}

		report := out.Report
		report.Source = out.Source
		result.ResolvedAt = r.now().UTC()
		if report.AsOf.IsZero() {
			report.AsOf = result.ResolvedAt
		}
		result.Report = &report

		fields["courses"] = len(report.Courses)
		logger.Info("Going resolved", fields)
		metrics.RecordResolution(string(report.Source))
		return result
	}

	result.ResolvedAt = r.now().UTC()
	result.Message = PendingMessage

	if err := ctx.Err(); err != nil {
		result.Err = fmt.Errorf("resolution abandoned: %w", err)
		logger.Warn("Going resolution abandoned", logger.Fields{
			"attempts": len(result.Outcomes),
		}, err)
		return result
	}

	logger.Info("Going data not yet available", logger.Fields{
		"attempts": len(result.Outcomes),
	})
	metrics.RecordResolution(string(going.SourceNone))
	return result
}

// attempt invokes one adapter under the per-adapter timeout. An adapter that
// overruns the timeout is abandoned; its request context is cancelled so the
// underlying fetch unwinds on its own.
func (r *Resolver) attempt(ctx context.Context, a Adapter) Outcome {
	source := a.Source()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type fetched struct {
		report going.Report
		err    error
	}
	done := make(chan fetched, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fetched{err: fmt.Errorf("adapter panicked: %v", p)}
			}
		}()
		report, err := a.Fetch(ctx)
		done <- fetched{report: report, err: err}
	}()

	out := Outcome{Source: source}
	select {
	case f := <-done:
		switch {
		case f.err != nil:
			out.Status = StatusFailed
			out.Err = f.err
		case !f.report.Usable():
			out.Status = StatusEmpty
			out.Report = f.report
		default:
			out.Status = StatusData
			out.Report = f.report
		}
	case <-ctx.Done():
		out.Status = StatusFailed
		out.Err = fmt.Errorf("%s: %w", source, ctx.Err())
	}

	out.Duration = time.Since(start)
	return out
}
