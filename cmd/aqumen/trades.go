package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Aqumen-Tech/aqumenlib/bond"
	"github.com/Aqumen-Tech/aqumenlib/dates"
	"github.com/Aqumen-Tech/aqumenlib/fxswap"
	"github.com/Aqumen-Tech/aqumenlib/instrument"
	"github.com/Aqumen-Tech/aqumenlib/market"
	"github.com/Aqumen-Tech/aqumenlib/moneymarket"
	"github.com/Aqumen-Tech/aqumenlib/pricer"
	"github.com/Aqumen-Tech/aqumenlib/swap"
)

// tradeInput is one position in a trade file. A swap is given either in
// full or as an IRS family with tenor and fixed coupon; a bond comes with
// its market quote. Deposits take a Cash family, tenor and rate in
// Coupon. FX swaps come in full or as an FXS family, tenor and points at
// today's spot; the trade CSA id selects the quote currency curve. A
// future names its contract and takes the exchange price as Quote.
type tradeInput struct {
	Kind string `json:"kind"`

	Swap   *swap.InterestRateSwap `json:"swap,omitempty"`
	Family string                 `json:"family,omitempty"`
	Tenor  string                 `json:"tenor,omitempty"`
	Coupon float64                `json:"coupon,omitempty"`

	Bond            *bond.Bond `json:"bond,omitempty"`
	Quote           float64    `json:"quote,omitempty"`
	QuoteConvention string     `json:"quote_convention,omitempty"`

	FXSwap        *fxswap.FXSwap `json:"fx_swap,omitempty"`
	ForwardPoints float64        `json:"forward_points,omitempty"`
	Contract      string         `json:"contract,omitempty"`

	Trade pricer.TradeInfo `json:"trade"`
}

// readTrades decodes a trade file holding one trade object or an array.
func readTrades(path string) ([]tradeInput, error) {
	if path == "" {
		return nil, fmt.Errorf("--trade is required")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimSpace(b)
	var raws []json.RawMessage
	if len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &raws); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		raws = []json.RawMessage{b}
	}
	out := make([]tradeInput, 0, len(raws))
	for i, raw := range raws {
		in := tradeInput{Trade: pricer.NewTradeInfo()}
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("%s: trade %d: %w", path, i, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func (in tradeInput) buildPricer(v *market.View) (pricer.Pricer, error) {
	switch strings.ToLower(in.Kind) {
	case "swap", "irs":
		s, err := in.buildSwap(v)
		if err != nil {
			return nil, err
		}
		return swap.NewPricer(s, v, in.Trade)
	case "bond":
		if in.Bond == nil {
			return nil, fmt.Errorf("bond trade %s has no bond", in.Trade.TradeID)
		}
		conv, err := parseBondConvention(in.QuoteConvention)
		if err != nil {
			return nil, err
		}
		return bond.NewPricer(in.Bond, v, in.Quote, conv, in.Trade)
	case "fxswap", "fxforward":
		s, err := in.buildFXSwap(v)
		if err != nil {
			return nil, err
		}
		s.ForwardOnly = strings.EqualFold(in.Kind, "fxforward")
		p, err := fxswap.NewPricer(s, v, in.Trade)
		if err != nil {
			return nil, err
		}
		return p.WithCSA("", in.Trade.CSAID), nil
	case "deposit", "cash":
		d, err := in.buildDeposit(v)
		if err != nil {
			return nil, err
		}
		return moneymarket.NewDepositPricer(d, v, in.Trade)
	case "future":
		t, err := instrument.Default().Type(in.Contract)
		if err != nil {
			return nil, err
		}
		return moneymarket.NewFuturePricer(t, v, in.Trade, in.Quote)
	}
	return nil, fmt.Errorf("trade %s: unknown kind %q", in.Trade.TradeID, in.Kind)
}

func (in tradeInput) buildSwap(v *market.View) (*swap.InterestRateSwap, error) {
	if in.Swap != nil {
		return in.Swap, nil
	}
	if in.Family == "" || in.Tenor == "" {
		return nil, fmt.Errorf("swap trade %s needs either swap or family and tenor", in.Trade.TradeID)
	}
	f, err := instrument.Default().Family(in.Family)
	if err != nil {
		return nil, err
	}
	irs, ok := f.(*instrument.IRSwapFamily)
	if !ok {
		return nil, fmt.Errorf("family %s is not an interest rate swap", in.Family)
	}
	tenor, err := dates.ParseTerm(in.Tenor)
	if err != nil {
		return nil, err
	}
	name := in.Family + "-" + tenor.String()
	return swap.FromFamily(name, irs, v.PricingDate(), tenor, in.Coupon), nil
}

func (in tradeInput) familyTenor(kind string) (instrument.Family, dates.Term, error) {
	if in.Family == "" || in.Tenor == "" {
		return nil, dates.Term{}, fmt.Errorf("%s trade %s needs family and tenor", kind, in.Trade.TradeID)
	}
	f, err := instrument.Default().Family(in.Family)
	if err != nil {
		return nil, dates.Term{}, err
	}
	tenor, err := dates.ParseTerm(in.Tenor)
	if err != nil {
		return nil, dates.Term{}, err
	}
	return f, tenor, nil
}

func (in tradeInput) buildFXSwap(v *market.View) (*fxswap.FXSwap, error) {
	if in.FXSwap != nil {
		s := *in.FXSwap
		return &s, nil
	}
	f, tenor, err := in.familyTenor("fx swap")
	if err != nil {
		return nil, err
	}
	fx, ok := f.(*instrument.FXSwapFamily)
	if !ok {
		return nil, fmt.Errorf("family %s is not an FX swap", in.Family)
	}
	spot, err := v.SpotFX(fx.Base, fx.Quote)
	if err != nil {
		return nil, err
	}
	return fxswap.FromFamily(in.Family+"-"+tenor.String(), fx, v.PricingDate(), tenor, spot, in.ForwardPoints), nil
}

func (in tradeInput) buildDeposit(v *market.View) (*moneymarket.Deposit, error) {
	f, tenor, err := in.familyTenor("deposit")
	if err != nil {
		return nil, err
	}
	cash, ok := f.(*instrument.CashDepoFamily)
	if !ok {
		return nil, fmt.Errorf("family %s is not a cash deposit", in.Family)
	}
	return moneymarket.DepositFromFamily(in.Family+"-"+tenor.String(), cash, v.PricingDate(), tenor, in.Coupon), nil
}

func parseBondConvention(s string) (instrument.QuoteConvention, error) {
	switch c := instrument.QuoteConvention(strings.ToUpper(strings.TrimSpace(s))); c {
	case "":
		return instrument.QuoteCleanPrice, nil
	case instrument.QuoteCleanPrice, instrument.QuoteDirtyPrice, instrument.QuoteYield:
		return c, nil
	}
	return "", fmt.Errorf("unsupported bond quote convention %q", s)
}

func loadPricers(path string, v *market.View) ([]pricer.Pricer, error) {
	trades, err := readTrades(path)
	if err != nil {
		return nil, err
	}
	out := make([]pricer.Pricer, 0, len(trades))
	for _, t := range trades {
		p, err := t.buildPricer(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
