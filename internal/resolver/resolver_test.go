package resolver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pfrederiksen/cheltenham-going/internal/going"
	"github.com/smartystreets/goconvey/convey"
)

// fakeAdapter returns a canned report and counts invocations
type fakeAdapter struct {
	source going.Source
	report going.Report
	err    error
	delay  time.Duration
	panics bool
	calls  atomic.Int32
}

func (f *fakeAdapter) Source() going.Source { return f.source }

func (f *fakeAdapter) callCount() int { return int(f.calls.Load()) }

func (f *fakeAdapter) Fetch(ctx context.Context) (going.Report, error) {
	f.calls.Add(1)
	if f.panics {
		panic("parser exploded")
	}
	if f.delay > 0 {
		// Deliberately ignores ctx to model an adapter that overruns
		time.Sleep(f.delay)
	}
	return f.report, f.err
}

func courses(names ...string) []going.Course {
	out := make([]going.Course, 0, len(names))
	for _, n := range names {
		out = append(out, going.Course{Name: n, Going: going.Soft})
	}
	return out
}

func adapters(fakes ...*fakeAdapter) []Adapter {
	out := make([]Adapter, len(fakes))
	for i, f := range fakes {
		out[i] = f
	}
	return out
}

var fixedNow = time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestResolve(t *testing.T) {
	convey.Convey("Given a resolver over three going sources", t, func() {
		ctx := context.Background()

		convey.Convey("When the first source returns courses", func() {
			first := &fakeAdapter{source: going.SourceJockeyClub, report: going.Report{Courses: courses("Old Course")}}
			second := &fakeAdapter{source: going.SourceRacingPost, report: going.Report{Courses: courses("Official Going")}}
			third := &fakeAdapter{source: going.SourceTurfTrax, report: going.Report{Courses: courses("Old Course")}}

			result := New(adapters(first, second, third), WithClock(fixedClock)).Resolve(ctx)

			convey.Convey("Then later sources are never invoked", func() {
				convey.So(first.callCount(), convey.ShouldEqual, 1)
				convey.So(second.callCount(), convey.ShouldEqual, 0)
				convey.So(third.callCount(), convey.ShouldEqual, 0)
				convey.So(result.Outcomes, convey.ShouldHaveLength, 1)
			})

			convey.Convey("Then the report is tagged with the first source", func() {
				convey.So(result.Available(), convey.ShouldBeTrue)
				convey.So(result.Report.Source, convey.ShouldEqual, going.SourceJockeyClub)
				convey.So(result.Report.Courses, convey.ShouldHaveLength, 1)
				convey.So(result.Message, convey.ShouldBeEmpty)
			})

			convey.Convey("Then asOf defaults to the resolution time", func() {
				convey.So(result.Report.AsOf, convey.ShouldEqual, fixedNow)
				convey.So(result.ResolvedAt, convey.ShouldEqual, fixedNow)
			})
		})

		convey.Convey("When earlier sources fail or are empty", func() {
			first := &fakeAdapter{source: going.SourceJockeyClub, err: errors.New("unexpected status code: 503")}
			second := &fakeAdapter{source: going.SourceRacingPost, report: going.Report{RawText: "nothing useful"}}
			asOf := time.Date(2024, time.March, 11, 7, 45, 0, 0, time.UTC)
			third := &fakeAdapter{source: going.SourceTurfTrax, report: going.Report{AsOf: asOf, Courses: courses("Old Course", "New Course")}}

			result := New(adapters(first, second, third), WithClock(fixedClock)).Resolve(ctx)

			convey.Convey("Then each source is tried once in order", func() {
				convey.So(first.callCount(), convey.ShouldEqual, 1)
				convey.So(second.callCount(), convey.ShouldEqual, 1)
				convey.So(third.callCount(), convey.ShouldEqual, 1)
			})

			convey.Convey("Then outcomes are tagged per source", func() {
				convey.So(result.Outcomes, convey.ShouldHaveLength, 3)
				convey.So(result.Outcomes[0].Status, convey.ShouldEqual, StatusFailed)
				convey.So(result.Outcomes[0].Err, convey.ShouldNotBeNil)
				convey.So(result.Outcomes[1].Status, convey.ShouldEqual, StatusEmpty)
				convey.So(result.Outcomes[2].Status, convey.ShouldEqual, StatusData)
			})

			convey.Convey("Then the last source wins and keeps its own asOf", func() {
				convey.So(result.Report.Source, convey.ShouldEqual, going.SourceTurfTrax)
				convey.So(result.Report.AsOf, convey.ShouldEqual, asOf)
				convey.So(result.Report.Courses, convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When every source returns nothing", func() {
			first := &fakeAdapter{source: going.SourceJockeyClub}
			second := &fakeAdapter{source: going.SourceRacingPost}
			third := &fakeAdapter{source: going.SourceTurfTrax, err: errors.New("connection refused")}

			result := New(adapters(first, second, third), WithClock(fixedClock)).Resolve(ctx)

			convey.Convey("Then the result is pending with a message", func() {
				convey.So(result.Available(), convey.ShouldBeFalse)
				convey.So(result.Report, convey.ShouldBeNil)
				convey.So(result.Message, convey.ShouldEqual, PendingMessage)
				convey.So(result.ResolvedAt, convey.ShouldEqual, fixedNow)
				convey.So(result.Outcomes, convey.ShouldHaveLength, 3)
			})
		})

		convey.Convey("When a source errors but also returns courses", func() {
			first := &fakeAdapter{source: going.SourceJockeyClub, report: going.Report{Courses: courses("Old Course")}, err: errors.New("reading response: unexpected EOF")}
			second := &fakeAdapter{source: going.SourceRacingPost, report: going.Report{Courses: courses("Official Going")}}

			result := New(adapters(first, second)).Resolve(ctx)

			convey.Convey("Then the error wins and the next source is used", func() {
				convey.So(result.Outcomes[0].Status, convey.ShouldEqual, StatusFailed)
				convey.So(result.Report.Source, convey.ShouldEqual, going.SourceRacingPost)
			})
		})

		convey.Convey("When a source overruns the timeout", func() {
			slow := &fakeAdapter{source: going.SourceJockeyClub, delay: 500 * time.Millisecond, report: going.Report{Courses: courses("Old Course")}}
			next := &fakeAdapter{source: going.SourceRacingPost, report: going.Report{Courses: courses("Official Going")}}

			start := time.Now()
			result := New(adapters(slow, next), WithTimeout(50*time.Millisecond)).Resolve(ctx)
			elapsed := time.Since(start)

			convey.Convey("Then it is abandoned as failed and the next source answers", func() {
				convey.So(result.Outcomes[0].Status, convey.ShouldEqual, StatusFailed)
				convey.So(errors.Is(result.Outcomes[0].Err, context.DeadlineExceeded), convey.ShouldBeTrue)
				convey.So(result.Report.Source, convey.ShouldEqual, going.SourceRacingPost)
				convey.So(elapsed < 400*time.Millisecond, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a source panics", func() {
			broken := &fakeAdapter{source: going.SourceJockeyClub, panics: true}
			next := &fakeAdapter{source: going.SourceRacingPost, report: going.Report{Courses: courses("Official Going")}}

			result := New(adapters(broken, next)).Resolve(ctx)

			convey.Convey("Then it is treated as failed", func() {
				convey.So(result.Outcomes[0].Status, convey.ShouldEqual, StatusFailed)
				convey.So(result.Outcomes[0].Err.Error(), convey.ShouldContainSubstring, "panicked")
				convey.So(result.Report.Source, convey.ShouldEqual, going.SourceRacingPost)
			})
		})

		convey.Convey("When there are no sources", func() {
			result := New(nil).Resolve(ctx)

			convey.Convey("Then the result is pending", func() {
				convey.So(result.Available(), convey.ShouldBeFalse)
				convey.So(result.Message, convey.ShouldNotBeEmpty)
				convey.So(result.Outcomes, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestResolve_Idempotent(t *testing.T) {
	convey.Convey("Given identical source responses", t, func() {
		stick := 5.8
		report := going.Report{
			RawText: "Old: 5.8",
			Courses: []going.Course{{Name: "Old Course", Going: going.GoodToSoft, GoingStick: &stick}},
		}
		newResolver := func(now time.Time) *Resolver {
			return New(adapters(
				&fakeAdapter{source: going.SourceJockeyClub, err: errors.New("timeout")},
				&fakeAdapter{source: going.SourceRacingPost, report: report},
			), WithClock(func() time.Time { return now }))
		}

		first := newResolver(fixedNow).Resolve(context.Background())
		second := newResolver(fixedNow.Add(time.Hour)).Resolve(context.Background())

		convey.Convey("Then both resolutions agree except for timestamps", func() {
			convey.So(first.Report.Source, convey.ShouldEqual, second.Report.Source)
			convey.So(first.Report.Courses, convey.ShouldResemble, second.Report.Courses)
			convey.So(first.Report.RawText, convey.ShouldEqual, second.Report.RawText)
			convey.So(first.Report.AsOf, convey.ShouldNotEqual, second.Report.AsOf)
		})
	})
}

func TestResolve_ParentContextCancelled(t *testing.T) {
	convey.Convey("Given a cancelled request context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		blocking := &fakeAdapter{source: going.SourceJockeyClub, delay: 200 * time.Millisecond, report: going.Report{Courses: courses("Old Course")}}
		result := New(adapters(blocking)).Resolve(ctx)

		convey.Convey("Then the source is abandoned and the result is pending", func() {
			convey.So(result.Available(), convey.ShouldBeFalse)
			convey.So(result.Outcomes[0].Status, convey.ShouldEqual, StatusFailed)
		})

		convey.Convey("Then the result reports the cancellation", func() {
			convey.So(errors.Is(result.Err, context.Canceled), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given sources that are simply empty", t, func() {
		empty := &fakeAdapter{source: going.SourceJockeyClub}
		result := New(adapters(empty)).Resolve(context.Background())

		convey.Convey("Then the pending result carries no error", func() {
			convey.So(result.Err, convey.ShouldBeNil)
			convey.So(result.Message, convey.ShouldEqual, PendingMessage)
		})
	})
}
