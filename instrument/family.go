// Package instrument defines instrument families, instrument types and
// quoted instruments, plus the symbology registry that resolves names like
// IRS-SOFR-10Y.
package instrument

import (
	"errors"
	"fmt"
	"time"

	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/curve"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/index"
)

var (
	// ErrUnknownType is returned when a name resolves to no family.
	ErrUnknownType = errors.New("unknown instrument type")
	// ErrUnknownFamily is returned when a family name is not registered.
	ErrUnknownFamily = errors.New("unknown instrument family")
)

// DefaultBump is the quote bump used for sensitivities unless a family overrides it.
const DefaultBump = 0.0001

// Meta classifies the instruments of a family.
type Meta struct {
	Currency   currency.Currency
	RiskType   RiskType
	AssetClass AssetClass
}

// CurveSource is the part of a market view that calibration helpers read.
type CurveSource interface {
	PricingDate() time.Time
	DiscountingCurveByID(id string) (*curve.Curve, error)
	IndexCurve(indexName string) (*curve.Curve, error)
	Fixing(indexName string, d time.Time) (float64, bool)
}

// HelperRequest carries what a family needs to build a calibration helper.
type HelperRequest struct {
	Source    CurveSource
	Quote     float64
	Specifics string
	// DiscountingID names an existing discounting curve. Empty means the
	// curve being built discounts itself.
	DiscountingID string
	// TargetIndex is the index whose projection curve is being built.
	// Empty means the curve projects every index the helper needs.
	TargetIndex string
	// TargetCurrency is the currency of the curve being built. Cross
	// currency families use it to tell the trial curve from the
	// collateral curve.
	TargetCurrency currency.Currency
}

// Family is a parametrized class of instruments, such as SOFR OIS, from
// which instrument types are made by adding specifics such as a tenor.
type Family interface {
	Name() string
	Meta() Meta
	UnderlyingIndices() []*index.RateIndex
	DefaultBump() float64
	BumpQuote(quote, bump float64) float64
	ParseSpecifics(s string) (string, error)
	QuoteConvention() QuoteConvention
	NewHelper(req HelperRequest) (curve.Helper, error)
}

// FXSource is implemented by curve sources that also quote spot FX.
type FXSource interface {
	SpotFX(c1, c2 currency.Currency) (float64, error)
}

// CrossCurrency is implemented by families that exchange two currencies.
type CrossCurrency interface {
	Currencies() (base, quote currency.Currency)
}

// PillarDater is implemented by families whose pillar is a contract date
// rather than a tenor.
type PillarDater interface {
	PillarDate(specifics string, pricing time.Time) (time.Time, error)
}

// BaseFamily supplies the defaults shared by most families.
type BaseFamily struct {
	FamilyName string
	FamilyMeta Meta
}

func (b *BaseFamily) Name() string                          { return b.FamilyName }
func (b *BaseFamily) Meta() Meta                            { return b.FamilyMeta }
func (b *BaseFamily) UnderlyingIndices() []*index.RateIndex { return nil }
func (b *BaseFamily) DefaultBump() float64                  { return DefaultBump }
func (b *BaseFamily) BumpQuote(quote, bump float64) float64 { return quote + bump }
func (b *BaseFamily) QuoteConvention() QuoteConvention      { return QuoteRate }

// ParseSpecifics normalizes a tenor such as "10y" to "10Y".
func (b *BaseFamily) ParseSpecifics(s string) (string, error) {
	t, err := dates.ParseTerm(s)
	if err != nil {
		return "", fmt.Errorf("%s: %w", b.FamilyName, err)
	}
	return t.String(), nil
}

// NewHelper fails for families that cannot calibrate curves.
func (b *BaseFamily) NewHelper(HelperRequest) (curve.Helper, error) {
	return nil, fmt.Errorf("%s: family cannot calibrate curves", b.FamilyName)
}

// curves resolves the discounting and projection curves for a helper.
// A nil result means the trial curve plays that role.
func (r HelperRequest) curves(ix *index.RateIndex) (disc, proj *curve.Curve, err error) {
	if r.DiscountingID != "" {
		if disc, err = r.Source.DiscountingCurveByID(r.DiscountingID); err != nil {
			return nil, nil, err
		}
	}
	if ix != nil && r.TargetIndex != "" && r.TargetIndex != ix.Name {
		if proj, err = r.Source.IndexCurve(ix.Name); err != nil {
			return nil, nil, err
		}
	}
	return disc, proj, nil
}

func pick(fixed, trial *curve.Curve) *curve.Curve {
	if fixed != nil {
		return fixed
	}
	return trial
}

// quoteHelper is a curve helper backed by a pricing closure.
type quoteHelper struct {
	pillar  time.Time
	quote   float64
	implied func(*curve.Curve) (float64, error)
}

func (h *quoteHelper) Pillar() time.Time { return h.pillar }
func (h *quoteHelper) Quote() float64    { return h.quote }
func (h *quoteHelper) ImpliedQuote(c *curve.Curve) (float64, error) {
	return h.implied(c)
}
