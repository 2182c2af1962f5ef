package market

import (
	"time"

	"github.com/tidwall/btree"

	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
)

// Fixing is a published index value.
type Fixing struct {
	Date  time.Time `json:"date" yaml:"date"`
	Value float64   `json:"value" yaml:"value"`
}

// AddIndexFixings stores fixings for ix. Dates that are not fixing dates
// of the index calendar are dropped; the number kept is returned.
//
// Stored trees may be shared with clones, so the fixings are merged into a
// fresh tree that replaces the old one.
func (v *View) AddIndexFixings(ix *index.RateIndex, fixings []Fixing) int {
	tr := btree.NewMap[int, float64](32)
	if old, ok := v.fixings[ix.Name]; ok {
		old.Scan(func(k int, val float64) bool {
			tr.Set(k, val)
			return true
		})
	}
	kept := 0
	for _, f := range fixings {
		d := dates.Date(f.Date)
		if !ix.IsValidFixingDate(d) {
			continue
		}
		tr.Set(dates.ISOInt(d), f.Value)
		kept++
	}
	v.fixings[ix.Name] = tr
	return kept
}

// Fixing returns the fixing of an index on d.
func (v *View) Fixing(indexName string, d time.Time) (float64, bool) {
	tr, ok := v.fixings[indexName]
	if !ok {
		return 0, false
	}
	return tr.Get(dates.ISOInt(d))
}

// IndexFixings returns every fixing of an index in date order.
func (v *View) IndexFixings(indexName string) []Fixing {
	var out []Fixing
	if tr, ok := v.fixings[indexName]; ok {
		tr.Scan(func(k int, val float64) bool {
			out = append(out, fixingAt(k, val))
			return true
		})
	}
	return out
}

// FixingsBetween returns the fixings dated from..to inclusive.
func (v *View) FixingsBetween(indexName string, from, to time.Time) []Fixing {
	tr, ok := v.fixings[indexName]
	if !ok {
		return nil
	}
	last := dates.ISOInt(to)
	var out []Fixing
	tr.Ascend(dates.ISOInt(from), func(k int, val float64) bool {
		if k > last {
			return false
		}
		out = append(out, fixingAt(k, val))
		return true
	})
	return out
}

// FixingIndices lists the indices that have fixings, sorted.
func (v *View) FixingIndices() []string {
	return sortedKeys(v.fixings)
}

func fixingAt(k int, val float64) Fixing {
	d, _ := dates.FromISOInt(k)
	return Fixing{Date: d, Value: val}
}
