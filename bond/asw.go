package bond

import (
	"errors"
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
)

// ASWInput holds what the par asset swap spread needs. Prices and flows
// are per 100 face.
type ASWInput struct {
	SettlementDate time.Time
	DirtyPrice     float64
	Cashflows      []Cashflow
	// FloatIndex defines the floating leg the spread is paid over.
	FloatIndex    *index.RateIndex
	DiscountCurve *curve.Curve
}

// ASWResult carries the spread as a rate, 0.0025 for 25bp.
type ASWResult struct {
	Spread   float64
	PVBondRF float64
	PV01     float64
}

// ComputeASWSpread computes the par asset swap spread
//
//	ASW = (PV_bond^rf - P_dirty) / PV01
//
// where PV_bond^rf discounts the bond flows on the risk-free curve and
// PV01 is the value of 1bp on the floating leg from settlement to
// maturity. Values are taken as of settlement.
func ComputeASWSpread(in ASWInput) (ASWResult, error) {
	maturity, err := in.validate()
	if err != nil {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: %w", err)
	}

	dfSettle := in.DiscountCurve.DiscountFactor(in.SettlementDate)
	pvBondRF := 0.0
	for _, cf := range in.Cashflows {
		if !cf.Date.After(in.SettlementDate) {
			continue
		}
		pvBondRF += cf.Amount() * in.DiscountCurve.DiscountFactor(cf.Date) / dfSettle
	}

	ix := in.FloatIndex
	periods, err := dates.GenerateSchedule(in.SettlementDate, maturity, dates.ScheduleConvention{
		Frequency:      ix.Frequency(),
		Calendar:       ix.Calendar,
		PeriodAdjust:   calendar.ModifiedFollowing,
		MaturityAdjust: calendar.ModifiedFollowing,
		Rule:           dates.Backward,
	})
	if err != nil {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: float leg schedule: %w", err)
	}

	pv01 := 0.0
	for _, p := range periods {
		accrual := dates.YearFraction(p.Start, p.End, ix.DayCount)
		pv01 += 100 * accrual * 1e-4 * in.DiscountCurve.DiscountFactor(p.End) / dfSettle
	}
	if pv01 == 0 {
		return ASWResult{}, fmt.Errorf("ComputeASWSpread: PV01 is zero")
	}

	spreadBP := (pvBondRF - in.DirtyPrice) / pv01
	return ASWResult{
		Spread:   spreadBP * 1e-4,
		PVBondRF: pvBondRF,
		PV01:     pv01,
	}, nil
}

// validate checks the inputs and returns the last flow date.
func (in ASWInput) validate() (time.Time, error) {
	switch {
	case in.SettlementDate.IsZero():
		return time.Time{}, errors.New("no settlement date")
	case in.DiscountCurve == nil:
		return time.Time{}, errors.New("no discount curve")
	case in.FloatIndex == nil:
		return time.Time{}, errors.New("no floating index")
	case len(in.Cashflows) == 0:
		return time.Time{}, errors.New("no cash flows")
	}
	last := in.SettlementDate
	for _, cf := range in.Cashflows {
		if cf.Date.After(last) {
			last = cf.Date
		}
	}
	if !last.After(in.SettlementDate) {
		return time.Time{}, fmt.Errorf("bond has no flows after settlement %s", dates.Format(in.SettlementDate))
	}
	return last, nil
}
