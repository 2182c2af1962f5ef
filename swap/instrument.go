package swap

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
)

// InterestRateSwap is a vanilla fixed-for-floating swap. Overnight indices
// give an OIS with a compounded float leg; term indices give an IBOR swap
// whose float leg rolls at the index tenor.
type InterestRateSwap struct {
	Name            string
	Index           *index.RateIndex
	Effective       time.Time
	Maturity        time.Time
	Frequency       dates.Frequency
	FixedCoupon     float64
	FixedDayCount   dates.DayCount
	FloatSpread     float64
	PaymentCalendar calendar.CalendarID
	PeriodAdjust    calendar.BusinessDayAdjustment
	PaymentAdjust   calendar.BusinessDayAdjustment
	MaturityAdjust  calendar.BusinessDayAdjustment
	// PaymentDelay is in business days after the accrual end.
	PaymentDelay int
	EndOfMonth   bool
}

// FromFamily returns the spot-starting swap that a calibration instrument
// of family f with the given tenor represents.
func FromFamily(name string, f *instrument.IRSwapFamily, pricing time.Time, tenor dates.Term, coupon float64) *InterestRateSwap {
	start := calendar.AddBusinessDays(f.Calendar, pricing, f.SettleDays)
	return &InterestRateSwap{
		Name:            name,
		Index:           f.Index,
		Effective:       start,
		Maturity:        tenor.AddTo(start, 1),
		Frequency:       f.FixedFrequency,
		FixedCoupon:     coupon,
		FixedDayCount:   f.FixedDayCount,
		PaymentCalendar: f.Calendar,
		PeriodAdjust:    f.FixedAdjustment,
		PaymentAdjust:   f.FixedAdjustment,
		MaturityAdjust:  f.FixedAdjustment,
		EndOfMonth:      f.EndOfMonth,
	}
}

// Validate checks the terms needed to build both legs.
func (s *InterestRateSwap) Validate() error {
	switch {
	case s.Index == nil:
		return fmt.Errorf("swap %s: index is required", s.Name)
	case !s.Maturity.After(s.Effective):
		return fmt.Errorf("swap %s: maturity %s not after effective %s", s.Name, dates.Format(s.Maturity), dates.Format(s.Effective))
	case s.Frequency <= 0:
		return fmt.Errorf("swap %s: unsupported fixed frequency %d", s.Name, s.Frequency)
	case s.PaymentDelay < 0:
		return fmt.Errorf("swap %s: negative payment delay", s.Name)
	}
	return nil
}

func (s *InterestRateSwap) floatFrequency() dates.Frequency {
	if s.Index.IsOvernight() {
		return s.Frequency
	}
	return s.Index.Frequency()
}

type swapJSON struct {
	Name            string                         `json:"name"`
	Index           string                         `json:"index"`
	Effective       string                         `json:"effective"`
	Maturity        string                         `json:"maturity"`
	Frequency       string                         `json:"frequency"`
	FixedCoupon     float64                        `json:"fixed_coupon"`
	FixedDayCount   dates.DayCount                 `json:"fixed_day_count,omitempty"`
	FloatSpread     float64                        `json:"float_spread,omitempty"`
	PaymentCalendar calendar.CalendarID            `json:"payment_calendar,omitempty"`
	PeriodAdjust    calendar.BusinessDayAdjustment `json:"period_adjust,omitempty"`
	PaymentAdjust   calendar.BusinessDayAdjustment `json:"payment_adjust,omitempty"`
	MaturityAdjust  calendar.BusinessDayAdjustment `json:"maturity_adjust,omitempty"`
	PaymentDelay    int                            `json:"payment_delay,omitempty"`
	EndOfMonth      bool                           `json:"end_of_month,omitempty"`
}

func (s *InterestRateSwap) MarshalJSON() ([]byte, error) {
	out := swapJSON{
		Name:            s.Name,
		Effective:       dates.Format(s.Effective),
		Maturity:        dates.Format(s.Maturity),
		Frequency:       s.Frequency.String(),
		FixedCoupon:     s.FixedCoupon,
		FixedDayCount:   s.FixedDayCount,
		FloatSpread:     s.FloatSpread,
		PaymentCalendar: s.PaymentCalendar,
		PeriodAdjust:    s.PeriodAdjust,
		PaymentAdjust:   s.PaymentAdjust,
		MaturityAdjust:  s.MaturityAdjust,
		PaymentDelay:    s.PaymentDelay,
		EndOfMonth:      s.EndOfMonth,
	}
	if s.Index != nil {
		out.Index = s.Index.Name
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a swap. Day count and calendar default to those of
// the index; frequency defaults to annual.
func (s *InterestRateSwap) UnmarshalJSON(b []byte) error {
	var in swapJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return fmt.Errorf("swap: %w", err)
	}
	ix, err := index.Lookup(in.Index)
	if err != nil {
		return fmt.Errorf("swap %s: %w", in.Name, err)
	}
	eff, err := dates.Parse(in.Effective)
	if err != nil {
		return fmt.Errorf("swap %s: effective: %w", in.Name, err)
	}
	mat, err := dates.Parse(in.Maturity)
	if err != nil {
		return fmt.Errorf("swap %s: maturity: %w", in.Name, err)
	}
	freq := dates.Annual
	if in.Frequency != "" {
		if freq, err = dates.ParseFrequency(in.Frequency); err != nil {
			return fmt.Errorf("swap %s: %w", in.Name, err)
		}
	}
	*s = InterestRateSwap{
		Name:            in.Name,
		Index:           ix,
		Effective:       eff,
		Maturity:        mat,
		Frequency:       freq,
		FixedCoupon:     in.FixedCoupon,
		FixedDayCount:   in.FixedDayCount,
		FloatSpread:     in.FloatSpread,
		PaymentCalendar: in.PaymentCalendar,
		PeriodAdjust:    in.PeriodAdjust,
		PaymentAdjust:   in.PaymentAdjust,
		MaturityAdjust:  in.MaturityAdjust,
		PaymentDelay:    in.PaymentDelay,
		EndOfMonth:      in.EndOfMonth,
	}
	if s.FixedDayCount == "" {
		s.FixedDayCount = ix.DayCount
	}
	if s.PaymentCalendar == "" {
		s.PaymentCalendar = ix.Calendar
	}
	return s.Validate()
}
