// Package bond defines bond conventions and securities, and prices bond
// positions from a market quote and the curves of a market view.
package bond

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/dates"
)

// Bond is a traded fixed coupon bond. A nil Coupon makes it a zero.
type Bond struct {
	Name      string
	Type      *Type
	Effective time.Time
	Maturity  time.Time
	// Coupon is an annual rate, 0.05 for 5%.
	Coupon *float64

	ISIN      string
	IssueName string
	Ticker    string
	Sector    string
	Country   string
}

// IsZeroCoupon reports whether the bond pays only its redemption.
func (b *Bond) IsZeroCoupon() bool { return b.Coupon == nil }

// Validate checks the fields needed to build the schedule.
func (b *Bond) Validate() error {
	switch {
	case b.Type == nil:
		return fmt.Errorf("bond %s: type is required", b.Name)
	case !b.Maturity.After(b.Effective):
		return fmt.Errorf("bond %s: maturity %s not after effective %s", b.Name, dates.Format(b.Maturity), dates.Format(b.Effective))
	case b.Type.Frequency <= 0:
		return fmt.Errorf("bond %s: type %s has no coupon frequency", b.Name, b.Type.Name)
	}
	return nil
}

// Cashflows rolls the coupon schedule backward from maturity and returns
// coupons and the redemption per 100 face. A zero carries coupons of zero
// amount so that its periods still set the time axis used for yields.
func (b *Bond) Cashflows() ([]Cashflow, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	bt := b.Type
	periods, err := dates.GenerateSchedule(b.Effective, b.Maturity, dates.ScheduleConvention{
		Frequency:      bt.Frequency,
		Calendar:       bt.Calendar,
		PeriodAdjust:   bt.PeriodAdjust,
		MaturityAdjust: bt.MaturityAdjust,
		Rule:           dates.Backward,
		EndOfMonth:     bt.EndOfMonth,
	})
	if err != nil {
		return nil, fmt.Errorf("bond %s: %w", b.Name, err)
	}
	months := bt.Frequency.Months()
	out := make([]Cashflow, 0, len(periods)+1)
	for i, p := range periods {
		refStart, refEnd := p.UnadjustedStart, p.UnadjustedEnd
		if i == 0 {
			refStart = dates.AddMonth(refEnd, -months)
			if bt.EndOfMonth && dates.EndOfMonth(refEnd).Equal(refEnd) {
				refStart = dates.EndOfMonth(refStart)
			}
		}
		cf := Cashflow{
			Date:         calendar.AdjustWith(bt.Calendar, p.End, bt.PaymentAdjust),
			AccrualStart: p.Start,
			AccrualEnd:   p.End,
			RefStart:     refStart,
			RefEnd:       refEnd,
		}
		if b.Coupon != nil {
			cf.Coupon = *b.Coupon * 100 * dates.YearFractionInPeriod(p.Start, p.End, refStart, refEnd, bt.Frequency, bt.DayCount)
		}
		out = append(out, cf)
	}
	last := out[len(out)-1]
	out = append(out, Cashflow{
		Date:         last.Date,
		Principal:    100,
		AccrualStart: last.AccrualStart,
		AccrualEnd:   last.AccrualEnd,
		RefStart:     last.RefStart,
		RefEnd:       last.RefEnd,
	})
	return out, nil
}

type bondJSON struct {
	Name      string   `json:"name"`
	Type      string   `json:"bond_type"`
	Effective string   `json:"effective"`
	Maturity  string   `json:"maturity"`
	Coupon    *float64 `json:"coupon"`
	ISIN      string   `json:"isin,omitempty"`
	IssueName string   `json:"issue_name,omitempty"`
	Ticker    string   `json:"ticker,omitempty"`
	Sector    string   `json:"sector,omitempty"`
	Country   string   `json:"country,omitempty"`
}

func (b *Bond) MarshalJSON() ([]byte, error) {
	out := bondJSON{
		Name:      b.Name,
		Effective: dates.Format(b.Effective),
		Maturity:  dates.Format(b.Maturity),
		Coupon:    b.Coupon,
		ISIN:      b.ISIN,
		IssueName: b.IssueName,
		Ticker:    b.Ticker,
		Sector:    b.Sector,
		Country:   b.Country,
	}
	if b.Type != nil {
		out.Type = b.Type.Name
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a bond whose type is given by name.
func (b *Bond) UnmarshalJSON(data []byte) error {
	var in bondJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("bond: %w", err)
	}
	bt, err := LookupType(in.Type)
	if err != nil {
		return fmt.Errorf("bond %s: %w", in.Name, err)
	}
	eff, err := dates.Parse(in.Effective)
	if err != nil {
		return fmt.Errorf("bond %s: effective: %w", in.Name, err)
	}
	mat, err := dates.Parse(in.Maturity)
	if err != nil {
		return fmt.Errorf("bond %s: maturity: %w", in.Name, err)
	}
	*b = Bond{
		Name:      in.Name,
		Type:      bt,
		Effective: eff,
		Maturity:  mat,
		Coupon:    in.Coupon,
		ISIN:      in.ISIN,
		IssueName: in.IssueName,
		Ticker:    in.Ticker,
		Sector:    in.Sector,
		Country:   in.Country,
	}
	return b.Validate()
}
