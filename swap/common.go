package swap

import (
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
)

// FixingSource looks up published index fixings.
type FixingSource interface {
	Fixing(indexName string, d time.Time) (float64, bool)
}

// GenerateSchedule builds the periods of one leg rolled backward from
// maturity. Payment dates are the adjusted accrual ends, moved by the
// payment delay in business days. Term index legs carry a fixing date.
func GenerateSchedule(s *InterestRateSwap, freq dates.Frequency, dc dates.DayCount) ([]SchedulePeriod, error) {
	periods, err := dates.GenerateSchedule(s.Effective, s.Maturity, dates.ScheduleConvention{
		Frequency:      freq,
		Calendar:       s.PaymentCalendar,
		PeriodAdjust:   s.PeriodAdjust,
		MaturityAdjust: s.MaturityAdjust,
		Rule:           dates.Backward,
		EndOfMonth:     s.EndOfMonth,
	})
	if err != nil {
		return nil, fmt.Errorf("GenerateSchedule: %s: %w", s.Name, err)
	}
	out := make([]SchedulePeriod, len(periods))
	for i, p := range periods {
		pay := calendar.AdjustWith(s.PaymentCalendar, p.End, s.PaymentAdjust)
		if s.PaymentDelay > 0 {
			pay = calendar.AddBusinessDays(s.PaymentCalendar, pay, s.PaymentDelay)
		}
		sp := SchedulePeriod{StartDate: p.Start, EndDate: p.End, PayDate: pay, Accrual: dates.YearFraction(p.Start, p.End, dc)}
		if !s.Index.IsOvernight() {
			sp.FixingDate = s.Index.FixingDate(p.Start)
		}
		out[i] = sp
	}
	return out, nil
}

// forwardRate is the simple rate over start..end implied by the
// projection curve.
func forwardRate(proj *curve.Curve, start, end time.Time, dc dates.DayCount) float64 {
	alpha := dates.YearFraction(start, end, dc)
	if alpha == 0 {
		return 0
	}
	return (proj.DiscountFactor(start)/proj.DiscountFactor(end) - 1) / alpha
}

// termRate returns the rate of a term index period: the published fixing
// when it is past, the projected forward otherwise. A fixing due today is
// used when published and projected when not.
func termRate(ix *index.RateIndex, p SchedulePeriod, proj *curve.Curve, pricing time.Time, fixings FixingSource) (float64, error) {
	if p.FixingDate.After(pricing) {
		return forwardRate(proj, p.StartDate, p.EndDate, ix.DayCount), nil
	}
	if r, ok := fixings.Fixing(ix.Name, p.FixingDate); ok {
		return r, nil
	}
	if p.FixingDate.Equal(pricing) {
		return forwardRate(proj, p.StartDate, p.EndDate, ix.DayCount), nil
	}
	return 0, fmt.Errorf("%w: %s on %s", ErrMissingFixing, ix.Name, dates.Format(p.FixingDate))
}

// compoundedRate returns the simple-equivalent rate of an overnight period.
// Days before the pricing date compound published fixings; the rest comes
// from the projection curve as a discount factor ratio.
func compoundedRate(ix *index.RateIndex, p SchedulePeriod, proj *curve.Curve, pricing time.Time, fixings FixingSource) (float64, error) {
	alpha := dates.YearFraction(p.StartDate, p.EndDate, ix.DayCount)
	if alpha == 0 {
		return 0, nil
	}
	growth := 1.0
	d := p.StartDate
	for d.Before(pricing) && d.Before(p.EndDate) {
		r, ok := fixings.Fixing(ix.Name, d)
		if !ok {
			return 0, fmt.Errorf("%w: %s on %s", ErrMissingFixing, ix.Name, dates.Format(d))
		}
		next := calendar.AddBusinessDays(ix.Calendar, d, 1)
		if next.After(p.EndDate) {
			next = p.EndDate
		}
		growth *= 1 + r*dates.YearFraction(d, next, ix.DayCount)
		d = next
	}
	if d.Before(p.EndDate) {
		growth *= proj.DiscountFactor(d) / proj.DiscountFactor(p.EndDate)
	}
	return (growth - 1) / alpha, nil
}

// floatRate dispatches on the index kind.
func floatRate(ix *index.RateIndex, p SchedulePeriod, proj *curve.Curve, pricing time.Time, fixings FixingSource) (float64, error) {
	if ix.IsOvernight() {
		return compoundedRate(ix, p, proj, pricing, fixings)
	}
	return termRate(ix, p, proj, pricing, fixings)
}
