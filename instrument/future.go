package instrument

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
)

// Averaging is how daily overnight fixings combine over a futures period.
type Averaging string

const (
	Arithmetic Averaging = "ARITHMETIC"
	Compounded Averaging = "COMPOUNDED"
)

// ContractType gives the accrual dates of a futures contract month.
type ContractType interface {
	Index() *index.RateIndex
	Averaging() Averaging
	AccrualStart(month time.Time) time.Time
	AccrualEnd(month time.Time) time.Time
	LastTradingDate(month time.Time) time.Time
	// PeriodMonths is the nominal length of the contract period, which
	// sets the value of one price point.
	PeriodMonths() int
}

// SR1 is the ICE one-month SOFR future: arithmetic average over the calendar month.
type SR1 struct{}

func (SR1) Index() *index.RateIndex            { return index.SOFR }
func (SR1) Averaging() Averaging               { return Arithmetic }
func (SR1) AccrualStart(m time.Time) time.Time { return m }
func (SR1) AccrualEnd(m time.Time) time.Time   { return dates.EndOfMonth(m) }
func (SR1) PeriodMonths() int                  { return 1 }
func (SR1) LastTradingDate(m time.Time) time.Time {
	return calendar.AdjustWith(index.SOFR.Calendar, dates.EndOfMonth(m), calendar.Preceding)
}

// SR3 is the ICE three-month SOFR future: compounded between IMM Wednesdays.
type SR3 struct{}

func (SR3) Index() *index.RateIndex { return index.SOFR }
func (SR3) Averaging() Averaging    { return Compounded }
func (SR3) PeriodMonths() int       { return 3 }
func (SR3) AccrualStart(m time.Time) time.Time {
	return calendar.NthWeekday(3, time.Wednesday, m.Year(), m.Month())
}
func (SR3) AccrualEnd(m time.Time) time.Time {
	next := dates.AddMonth(m, 3)
	d := calendar.NthWeekday(3, time.Wednesday, next.Year(), next.Month())
	return calendar.AdjustWith(index.SOFR.Calendar, d, calendar.Preceding)
}
func (s SR3) LastTradingDate(m time.Time) time.Time { return s.AccrualEnd(m) }

// LookupContractType returns the contract for an exchange and symbol.
func LookupContractType(exchange, symbol string) (ContractType, error) {
	switch strings.ToUpper(exchange + "-" + symbol) {
	case "ICE-SR1":
		return SR1{}, nil
	case "ICE-SR3":
		return SR3{}, nil
	}
	return nil, fmt.Errorf("LookupContractType: unsupported contract %s-%s", exchange, symbol)
}

var monthCodes = map[byte]time.Month{
	'F': time.January, 'G': time.February, 'H': time.March, 'J': time.April,
	'K': time.May, 'M': time.June, 'N': time.July, 'Q': time.August,
	'U': time.September, 'V': time.October, 'X': time.November, 'Z': time.December,
}

// ContractMonth converts a series code such as M25 to the first day of the
// contract month. A one-digit year is the next year ending in that digit
// on or after anchorYear, so H5 with anchor 2024 is March 2025 and H3 is
// March 2033.
func ContractMonth(code string, anchorYear int) (time.Time, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < 2 || len(code) > 3 {
		return time.Time{}, fmt.Errorf("ContractMonth: invalid futures code %q", code)
	}
	m, ok := monthCodes[code[0]]
	if !ok {
		return time.Time{}, fmt.Errorf("ContractMonth: invalid month code in %q", code)
	}
	y, err := strconv.Atoi(code[1:])
	if err != nil || y < 0 {
		return time.Time{}, fmt.Errorf("ContractMonth: invalid year in %q", code)
	}
	if len(code) == 3 {
		y += 2000
	} else {
		if anchorYear <= 0 {
			return time.Time{}, fmt.Errorf("ContractMonth: one digit year in %q needs an anchor year", code)
		}
		decade := anchorYear - anchorYear%10
		y += decade
		if y < anchorYear {
			y += 10
		}
	}
	return dates.YMD(y, m, 1), nil
}

// OIFutureFamily is an overnight index future quoted as 100 * (1 - rate).
type OIFutureFamily struct {
	BaseFamily
	Exchange string
	Symbol   string
	Contract ContractType
}

// NewOIFutureFamily names the family FUT-<exchange>-<symbol>.
func NewOIFutureFamily(exchange, symbol string) (*OIFutureFamily, error) {
	ct, err := LookupContractType(exchange, symbol)
	if err != nil {
		return nil, err
	}
	return &OIFutureFamily{
		BaseFamily: BaseFamily{
			FamilyName: fmt.Sprintf("FUT-%s-%s", exchange, symbol),
			FamilyMeta: Meta{Currency: ct.Index().Currency, RiskType: RiskRate, AssetClass: AssetRate},
		},
		Exchange: exchange,
		Symbol:   symbol,
		Contract: ct,
	}, nil
}

func (f *OIFutureFamily) UnderlyingIndices() []*index.RateIndex {
	return []*index.RateIndex{f.Contract.Index()}
}

func (f *OIFutureFamily) QuoteConvention() QuoteConvention { return QuoteFuturesPrice }

// BumpQuote moves the implied rate up by bump, so the price falls by 100 * bump.
func (f *OIFutureFamily) BumpQuote(quote, bump float64) float64 { return quote - bump*100 }

// ParseSpecifics validates a series code such as Z24.
func (f *OIFutureFamily) ParseSpecifics(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if _, err := ContractMonth(s, 2000); err != nil {
		return "", fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	return s, nil
}

// PillarDate is the accrual end of the contract.
func (f *OIFutureFamily) PillarDate(specifics string, pricing time.Time) (time.Time, error) {
	m, err := ContractMonth(specifics, pricing.Year())
	if err != nil {
		return time.Time{}, err
	}
	return f.Contract.AccrualEnd(m), nil
}

// NewHelper implies the futures price from the projection curve. When the
// accrual period has started, realized fixings cover the elapsed part.
func (f *OIFutureFamily) NewHelper(req HelperRequest) (curve.Helper, error) {
	pricing := req.Source.PricingDate()
	m, err := ContractMonth(req.Specifics, pricing.Year())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	ix := f.Contract.Index()
	start, end := f.Contract.AccrualStart(m), f.Contract.AccrualEnd(m)
	if !end.After(pricing) {
		return nil, fmt.Errorf("%s-%s: contract accrual ended %s", f.FamilyName, req.Specifics, dates.Format(end))
	}
	tau := dates.YearFraction(start, end, ix.DayCount)

	// Realized part of the accrual period, before the pricing date.
	growth, accrued := 1.0, 0.0
	projStart := start
	if start.Before(pricing) {
		projStart = pricing
		for d := start; d.Before(pricing); {
			next := calendar.AddBusinessDays(ix.Calendar, d, 1)
			if next.After(pricing) {
				next = pricing
			}
			// A period starting on a holiday uses the previous published rate.
			fixDate := calendar.AdjustWith(ix.Calendar, d, calendar.Preceding)
			fix, ok := req.Source.Fixing(ix.Name, fixDate)
			if !ok {
				return nil, fmt.Errorf("%s-%s: missing %s fixing for %s", f.FamilyName, req.Specifics, ix.Name, dates.Format(fixDate))
			}
			dt := dates.YearFraction(d, next, ix.DayCount)
			growth *= 1 + fix*dt
			accrued += fix * dt
			d = next
		}
	}

	_, proj, err := req.curves(ix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.FamilyName, err)
	}
	averaging := f.Contract.Averaging()
	return &quoteHelper{
		pillar: end,
		quote:  req.Quote,
		implied: func(trial *curve.Curve) (float64, error) {
			c := pick(proj, trial)
			ratio := c.DiscountFactor(projStart) / c.DiscountFactor(end)
			var rate float64
			if averaging == Compounded {
				rate = (growth*ratio - 1) / tau
			} else {
				rate = (accrued + math.Log(ratio)) / tau
			}
			return 100 * (1 - rate), nil
		},
	}, nil
}
