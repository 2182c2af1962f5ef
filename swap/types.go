package swap

import (
	"errors"
	"time"
)

// ErrMissingFixing is returned when a past fixing needed by the float leg
// is not in the market.
var ErrMissingFixing = errors.New("missing fixing")

// SchedulePeriod is one accrual period of a leg with its payment and
// fixing dates.
type SchedulePeriod struct {
	StartDate  time.Time
	EndDate    time.Time
	PayDate    time.Time
	FixingDate time.Time
	Accrual    float64
}

// PV contains present values for each leg, unsigned, and the net value
// to the holder of the trade.
type PV struct {
	FixedLegPV float64
	FloatLegPV float64
	TotalPV    float64
}
