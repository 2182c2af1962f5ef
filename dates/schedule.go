package dates

import (
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
)

// Rule selects the direction of schedule generation.
type Rule string

const (
	Backward Rule = "BACKWARD"
	Forward  Rule = "FORWARD"
)

// stubMergeDays is the largest stub that is folded into its neighbour period.
const stubMergeDays = 7

// ScheduleConvention holds the settings needed to roll a schedule.
type ScheduleConvention struct {
	Frequency      Frequency
	Calendar       calendar.CalendarID
	PeriodAdjust   calendar.BusinessDayAdjustment
	MaturityAdjust calendar.BusinessDayAdjustment
	Rule           Rule
	EndOfMonth     bool
}

// Period is one accrual period with its adjusted and unadjusted boundaries.
type Period struct {
	Start           time.Time
	End             time.Time
	UnadjustedStart time.Time
	UnadjustedEnd   time.Time
}

// GenerateSchedule builds accrual periods between effective and maturity.
//
// Backward generation (the default) rolls from maturity, so a front stub
// appears when the tenor is not a whole number of periods. A stub of a week
// or less is merged into the following period.
func GenerateSchedule(effective, maturity time.Time, conv ScheduleConvention) ([]Period, error) {
	if !maturity.After(effective) {
		return nil, fmt.Errorf("GenerateSchedule: maturity %s not after effective %s", Format(maturity), Format(effective))
	}

	var unadjusted []time.Time
	months := conv.Frequency.Months()
	switch {
	case months == 0:
		unadjusted = []time.Time{effective, maturity}
	case conv.Rule == Forward:
		unadjusted = rollForward(effective, maturity, months, conv.EndOfMonth)
	default:
		unadjusted = rollBackward(effective, maturity, months, conv.EndOfMonth)
	}

	periods := make([]Period, 0, len(unadjusted)-1)
	last := len(unadjusted) - 1
	adjust := func(i int) time.Time {
		if i == last {
			return calendar.AdjustWith(conv.Calendar, unadjusted[i], conv.MaturityAdjust)
		}
		return calendar.AdjustWith(conv.Calendar, unadjusted[i], conv.PeriodAdjust)
	}
	for i := 0; i < last; i++ {
		periods = append(periods, Period{
			Start:           adjust(i),
			End:             adjust(i + 1),
			UnadjustedStart: unadjusted[i],
			UnadjustedEnd:   unadjusted[i+1],
		})
	}
	return periods, nil
}

func roll(anchor time.Time, months int, eom bool) time.Time {
	d := AddMonth(anchor, months)
	if eom {
		return EndOfMonth(d)
	}
	return d
}

// rollBackward generates unadjusted dates rolling backward from maturity.
func rollBackward(effective, maturity time.Time, months int, eom bool) []time.Time {
	eom = eom && isMonthEnd(maturity)
	var out []time.Time
	for k := 0; ; k++ {
		d := roll(maturity, -k*months, eom)
		if !d.After(effective) {
			break
		}
		out = append([]time.Time{d}, out...)
	}
	if len(out) > 1 && Days(effective, out[0]) <= stubMergeDays {
		out = out[1:]
	}
	return append([]time.Time{effective}, out...)
}

// rollForward generates unadjusted dates rolling forward from effective.
func rollForward(effective, maturity time.Time, months int, eom bool) []time.Time {
	eom = eom && isMonthEnd(effective)
	out := []time.Time{effective}
	for k := 1; ; k++ {
		d := roll(effective, k*months, eom)
		if !d.Before(maturity) {
			break
		}
		out = append(out, d)
	}
	if len(out) > 1 && Days(out[len(out)-1], maturity) <= stubMergeDays {
		out = out[:len(out)-1]
	}
	return append(out, maturity)
}
