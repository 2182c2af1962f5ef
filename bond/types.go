package bond

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
)

// Type holds the conventions shared by a class of bonds such as US
// Treasuries or UK Gilts.
type Type struct {
	Name        string
	Description string
	Currency    currency.Currency
	Frequency   dates.Frequency
	DayCount    dates.DayCount
	// AccrualDayCount is used for accrued interest; empty means DayCount.
	AccrualDayCount dates.DayCount
	SettlementDelay int
	PeriodAdjust    calendar.BusinessDayAdjustment
	PaymentAdjust   calendar.BusinessDayAdjustment
	MaturityAdjust  calendar.BusinessDayAdjustment
	Calendar        calendar.CalendarID
	EndOfMonth      bool
	// SwapIndex is the floating index an asset swap spread is quoted over.
	SwapIndex *index.RateIndex
}

func (t *Type) accrualDayCount() dates.DayCount {
	if t.AccrualDayCount != "" {
		return t.AccrualDayCount
	}
	return t.DayCount
}

// SettlementDate is the settlement of a trade done on d.
func (t *Type) SettlementDate(d time.Time) time.Time {
	return calendar.AddBusinessDays(t.Calendar, d, t.SettlementDelay)
}

var (
	typesMu sync.RWMutex
	types   = map[string]*Type{}
)

func init() {
	for _, t := range []*Type{
		{Name: "Govt-USA", Description: "US Treasury Bond", Currency: currency.USD,
			Frequency: dates.Semiannual, DayCount: dates.ACTACTICMA, SettlementDelay: 2,
			PeriodAdjust: calendar.ModifiedFollowing, Calendar: calendar.USGS, EndOfMonth: true, SwapIndex: index.SOFR},
		{Name: "Corp-USA", Description: "US Corporate Bond", Currency: currency.USD,
			Frequency: dates.Semiannual, DayCount: dates.Thirty360, SettlementDelay: 2,
			PeriodAdjust: calendar.ModifiedFollowing, Calendar: calendar.USNY, EndOfMonth: true, SwapIndex: index.SOFR},
		{Name: "Govt-UK", Description: "UK Gilt", Currency: currency.GBP,
			Frequency: dates.Semiannual, DayCount: dates.ACTACTICMA, SettlementDelay: 1,
			PeriodAdjust: calendar.Unadjusted, PaymentAdjust: calendar.Unadjusted, Calendar: calendar.GBLO, EndOfMonth: true, SwapIndex: index.SONIA},
		{Name: "Corp-UK", Description: "United Kingdom Corporate Bond", Currency: currency.GBP,
			Frequency: dates.Annual, DayCount: dates.ACT365F, SettlementDelay: 2,
			PeriodAdjust: calendar.ModifiedFollowing, Calendar: calendar.GBLO, EndOfMonth: true, SwapIndex: index.SONIA},
	} {
		types[t.Name] = t
	}
}

// GenericType returns the Generic-<CCY> type: semiannual ACT/365F, two
// day settlement and no holidays.
func GenericType(ccy currency.Currency) *Type {
	return &Type{
		Name:            "Generic-" + string(ccy),
		Description:     fmt.Sprintf("Generic %s Bond", ccy),
		Currency:        ccy,
		Frequency:       dates.Semiannual,
		DayCount:        dates.ACT365F,
		SettlementDelay: 2,
		PeriodAdjust:    calendar.ModifiedFollowing,
		Calendar:        calendar.NULL,
		EndOfMonth:      true,
	}
}

// LookupType finds a registered type. Generic-<CCY> names resolve for any
// known currency.
func LookupType(name string) (*Type, error) {
	typesMu.RLock()
	t, ok := types[name]
	typesMu.RUnlock()
	if ok {
		return t, nil
	}
	if code, found := strings.CutPrefix(name, "Generic-"); found {
		ccy, err := currency.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("LookupType: %w", err)
		}
		return GenericType(ccy), nil
	}
	return nil, fmt.Errorf("LookupType: unknown bond type %q", name)
}

// RegisterType adds or replaces a bond type.
func RegisterType(t *Type) error {
	if t.Name == "" || t.Frequency <= 0 || t.DayCount == "" {
		return fmt.Errorf("RegisterType: name, frequency and day count are required")
	}
	typesMu.Lock()
	defer typesMu.Unlock()
	types[t.Name] = t
	return nil
}

// TypeNames lists the registered types, sorted.
func TypeNames() []string {
	typesMu.RLock()
	defer typesMu.RUnlock()
	out := make([]string, 0, len(types))
	for n := range types {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Cashflow is a single dated payment per 100 face, with the coupon period
// it belongs to.
type Cashflow struct {
	Date      time.Time
	Coupon    float64
	Principal float64

	AccrualStart time.Time
	AccrualEnd   time.Time
	// RefStart and RefEnd are the regular period used by ACT/ACT ICMA.
	RefStart time.Time
	RefEnd   time.Time
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}
