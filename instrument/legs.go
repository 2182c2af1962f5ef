package instrument

import (
	"time"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
)

// legPeriod is one accrual period of a calibration leg.
type legPeriod struct {
	start, end time.Time
	pay        time.Time
	tau        float64
}

type legConvention struct {
	frequency dates.Frequency
	calendar  calendar.CalendarID
	adjust    calendar.BusinessDayAdjustment
	dayCount  dates.DayCount
	eom       bool
}

// spotAndMaturity returns the adjusted start and end of a swap-like
// instrument with the given tenor.
func spotAndMaturity(pricing time.Time, settleDays int, cal calendar.CalendarID, adj calendar.BusinessDayAdjustment, tenor dates.Term) (time.Time, time.Time) {
	start := calendar.AddBusinessDays(cal, pricing, settleDays)
	end := calendar.AdjustWith(cal, tenor.AddTo(start, 1), adj)
	return start, end
}

// buildLeg rolls a backward schedule from start to the unadjusted maturity.
func buildLeg(start time.Time, tenor dates.Term, conv legConvention) ([]legPeriod, error) {
	periods, err := dates.GenerateSchedule(start, tenor.AddTo(start, 1), dates.ScheduleConvention{
		Frequency:      conv.frequency,
		Calendar:       conv.calendar,
		PeriodAdjust:   conv.adjust,
		MaturityAdjust: conv.adjust,
		EndOfMonth:     conv.eom,
	})
	if err != nil {
		return nil, err
	}
	out := make([]legPeriod, len(periods))
	for i, p := range periods {
		out[i] = legPeriod{start: p.Start, end: p.End, pay: p.End, tau: dates.YearFraction(p.Start, p.End, conv.dayCount)}
	}
	return out, nil
}

// annuity is the PV of one unit of rate paid on every period.
func annuity(disc *curve.Curve, leg []legPeriod) float64 {
	a := 0.0
	for _, p := range leg {
		a += p.tau * disc.DiscountFactor(p.pay)
	}
	return a
}

// floatingPV values projected coupons without spread. For a term index over
// its own tenor, and for a compounded overnight index, the period amount is
// the ratio of projection discount factors less one.
func floatingPV(disc, proj *curve.Curve, leg []legPeriod) float64 {
	pv := 0.0
	for _, p := range leg {
		pv += (proj.DiscountFactor(p.start)/proj.DiscountFactor(p.end) - 1) * disc.DiscountFactor(p.pay)
	}
	return pv
}

func lastPay(leg []legPeriod) time.Time {
	d := leg[len(leg)-1].pay
	for _, p := range leg {
		if p.pay.After(d) {
			d = p.pay
		}
	}
	return d
}
