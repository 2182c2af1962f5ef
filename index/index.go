// Package index defines interest rate indices and their fixing conventions.
package index

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/dates"
)

// RateIndex is a floating rate benchmark such as SOFR or EURIBOR6M.
type RateIndex struct {
	Name        string
	Description string
	Currency    currency.Currency
	Tenor       dates.Term
	SettleDays  int
	Calendar    calendar.CalendarID
	DayCount    dates.DayCount
	Adjustment  calendar.BusinessDayAdjustment
	EndOfMonth  bool
}

// IsOvernight reports whether the index is an overnight rate.
func (r *RateIndex) IsOvernight() bool {
	return r.Tenor.Unit == dates.UnitDays && r.Tenor.Length == 1
}

// IsValidFixingDate reports whether the index publishes a fixing on d.
func (r *RateIndex) IsValidFixingDate(d time.Time) bool {
	return calendar.IsBusinessDay(r.Calendar, d)
}

// ValueDate is the start of the accrual period fixed on the given date.
func (r *RateIndex) ValueDate(fixing time.Time) time.Time {
	return calendar.AddBusinessDays(r.Calendar, fixing, r.SettleDays)
}

// FixingDate is the fixing date for an accrual period starting on value.
func (r *RateIndex) FixingDate(value time.Time) time.Time {
	return calendar.AddBusinessDays(r.Calendar, value, -r.SettleDays)
}

// MaturityDate is the end of the index tenor starting on value.
func (r *RateIndex) MaturityDate(value time.Time) time.Time {
	if r.IsOvernight() {
		return calendar.AddBusinessDays(r.Calendar, value, 1)
	}
	end := r.Tenor.AddTo(value, 1)
	if r.EndOfMonth && calendar.IsEndOfMonth(r.Calendar, value) {
		end = calendar.LastBusinessDayOfMonth(r.Calendar, end)
	}
	return calendar.AdjustWith(r.Calendar, end, r.Adjustment)
}

// Frequency implied by the index tenor; overnight indices return Annual.
func (r *RateIndex) Frequency() dates.Frequency {
	if f, err := dates.FrequencyFromTerm(r.Tenor); err == nil {
		return f
	}
	return dates.Annual
}

func (r *RateIndex) String() string {
	return r.Name
}

var builtins = map[string]*RateIndex{}

func register(ix *RateIndex) *RateIndex {
	if ix.Adjustment == "" {
		ix.Adjustment = calendar.ModifiedFollowing
	}
	builtins[ix.Name] = ix
	return ix
}

// Lookup returns a built-in index by name (case-insensitive).
func Lookup(name string) (*RateIndex, error) {
	if ix, ok := builtins[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return ix, nil
	}
	return nil, fmt.Errorf("index.Lookup: unknown index %q", name)
}

// Register adds a custom index to the lookup table.
func Register(ix *RateIndex) error {
	if ix == nil || ix.Name == "" {
		return fmt.Errorf("index.Register: index needs a name")
	}
	if _, ok := builtins[ix.Name]; ok {
		return fmt.Errorf("index.Register: index %s already registered", ix.Name)
	}
	register(ix)
	return nil
}

// All lists registered indices sorted by name.
func All() []*RateIndex {
	out := make([]*RateIndex, 0, len(builtins))
	for _, ix := range builtins {
		out = append(out, ix)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
