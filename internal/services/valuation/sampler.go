package valuation

import (
	"errors"
	"fmt"
	"time"

	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

const (
	// MaxSpanDays is the hard cap on a requested range. Larger spans are
	// rejected before any computation.
	MaxSpanDays = 3650

	// maxSamplePoints bounds the number of displayed points; the step is
	// widened until the axis fits.
	maxSamplePoints = 200
)

// ErrSpanTooLarge is returned when a requested range exceeds MaxSpanDays.
var ErrSpanTooLarge = errors.New("requested range exceeds the 3650-day maximum")

// ErrInvalidDate is returned for unparseable start/end dates.
var ErrInvalidDate = errors.New("invalid date")

// stepLadder holds the "round" step sizes, in days, the sampler snaps to.
var stepLadder = []int{1, 3, 7, 14, 30, 60}

// SamplePoint is a label plus the instant valuation is computed at.
type SamplePoint struct {
	Label string
	Date  time.Time
}

// Axis is the resolved time axis for one series request.
type Axis struct {
	Points         []SamplePoint
	StepDays       int // label step; 0 in intraday mode
	LookupStepDays int // price-lookup grid step, >= StepDays
	Resolution     string
	Start          time.Time
	End            time.Time
	Intraday       bool
}

// SpanDays returns the number of days between axis start and end.
func (a *Axis) SpanDays() int {
	return int(a.End.Sub(a.Start).Hours() / 24)
}

// BuildAxis converts a date range plus an intraday flag into a bounded,
// resolution-adapted sequence of sample points. Reversed ranges are swapped,
// not rejected.
func BuildAxis(start, end time.Time, intraday bool) (*Axis, error) {
	start = midnight(start)
	end = midnight(end)
	if end.Before(start) {
		start, end = end, start
	}

	spanDays := int(end.Sub(start).Hours() / 24)
	if spanDays > MaxSpanDays {
		return nil, fmt.Errorf("%w: %d days requested", ErrSpanTooLarge, spanDays)
	}

	if intraday && spanDays == 0 {
		return buildIntradayAxis(start), nil
	}

	step := labelStep(spanDays)
	lookup := lookupStep(spanDays)
	if lookup < step {
		lookup = step
	}

	withYear := spanDays > 365
	points := make([]SamplePoint, 0, spanDays/step+2)
	for d := start; !d.After(end); d = d.AddDate(0, 0, step) {
		points = append(points, SamplePoint{Label: dayLabel(d, withYear), Date: d})
	}
	// The end date is always sampled, even when the step strides past it.
	if last := points[len(points)-1]; !last.Date.Equal(end) {
		points = append(points, SamplePoint{Label: dayLabel(end, withYear), Date: end})
	}

	return &Axis{
		Points:         points,
		StepDays:       step,
		LookupStepDays: lookup,
		Resolution:     models.ResolutionDaily,
		Start:          start,
		End:            end,
	}, nil
}

// buildIntradayAxis samples a single day every 2 hours, 00:00 through 24:00.
func buildIntradayAxis(day time.Time) *Axis {
	points := make([]SamplePoint, 0, 13)
	for h := 0; h <= 24; h += 2 {
		points = append(points, SamplePoint{
			Label: fmt.Sprintf("%02d:00", h),
			Date:  day.Add(time.Duration(h) * time.Hour),
		})
	}
	return &Axis{
		Points:         points,
		StepDays:       0,
		LookupStepDays: 1,
		Resolution:     models.ResolutionIntraday,
		Start:          day,
		End:            day,
		Intraday:       true,
	}
}

// labelStep picks the display step for a span: daily up to 6 months, every
// 3 days up to 2 years, weekly beyond — then widened along the snap ladder
// until at most maxSamplePoints are produced.
func labelStep(spanDays int) int {
	step := 1
	switch {
	case spanDays > 730:
		step = 7
	case spanDays > 183:
		step = 3
	}
	for spanDays/step+1 > maxSamplePoints {
		next, ok := nextStep(step)
		if !ok {
			break
		}
		step = next
	}
	return step
}

// lookupStep picks the price-lookup grid independently of the display step:
// daily, every 3 days, weekly, or bi-weekly depending on span.
func lookupStep(spanDays int) int {
	switch {
	case spanDays <= 183:
		return 1
	case spanDays <= 730:
		return 3
	case spanDays <= 1825:
		return 7
	default:
		return 14
	}
}

func nextStep(step int) (int, bool) {
	for _, s := range stepLadder {
		if s > step {
			return s, true
		}
	}
	return step, false
}

// dayLabel formats a sample label, including the year only for spans longer
// than a year.
func dayLabel(d time.Time, withYear bool) string {
	if withYear {
		return d.Format("02/01/2006")
	}
	return d.Format("02/01")
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
