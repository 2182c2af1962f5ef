package instrument

import (
	"fmt"
	"strings"
)

// RiskType classifies the market risk an instrument carries.
type RiskType string

const (
	RiskRate      RiskType = "RATE"
	RiskRateBasis RiskType = "RATEBASIS"
	RiskFX        RiskType = "FX"
	RiskInflation RiskType = "INFLATION"
	RiskCredit    RiskType = "CREDIT"
	RiskEquity    RiskType = "EQUITY"
	RiskCommodity RiskType = "COMMODITY"
)

// AssetClass is the broad asset class of an instrument.
type AssetClass string

const (
	AssetRate      AssetClass = "RATE"
	AssetFX        AssetClass = "FX"
	AssetInflation AssetClass = "INFLATION"
	AssetCredit    AssetClass = "CREDIT"
	AssetEquity    AssetClass = "EQUITY"
	AssetCommodity AssetClass = "COMMODITY"
)

// QuoteConvention says how an instrument quote is expressed.
type QuoteConvention string

const (
	QuoteRate          QuoteConvention = "RATE"
	QuoteYield         QuoteConvention = "YIELD"
	QuoteCleanPrice    QuoteConvention = "CLEAN_PRICE"
	QuoteDirtyPrice    QuoteConvention = "DIRTY_PRICE"
	QuoteFuturesPrice  QuoteConvention = "FUTURES_PRICE"
	QuoteSpread        QuoteConvention = "SPREAD"
	QuoteFXRate        QuoteConvention = "FX_RATE"
	QuoteForwardPoints QuoteConvention = "FORWARD_POINTS"
)

// ParseRiskType accepts risk type names case-insensitively.
func ParseRiskType(s string) (RiskType, error) {
	rt := RiskType(strings.ToUpper(strings.TrimSpace(s)))
	switch rt {
	case RiskRate, RiskRateBasis, RiskFX, RiskInflation, RiskCredit, RiskEquity, RiskCommodity:
		return rt, nil
	}
	return "", fmt.Errorf("instrument.ParseRiskType: unknown risk type %q", s)
}

// ParseAssetClass accepts asset class names case-insensitively.
func ParseAssetClass(s string) (AssetClass, error) {
	ac := AssetClass(strings.ToUpper(strings.TrimSpace(s)))
	switch ac {
	case AssetRate, AssetFX, AssetInflation, AssetCredit, AssetEquity, AssetCommodity:
		return ac, nil
	}
	return "", fmt.Errorf("instrument.ParseAssetClass: unknown asset class %q", s)
}

// ParseQuoteConvention accepts quote convention names case-insensitively.
func ParseQuoteConvention(s string) (QuoteConvention, error) {
	qc := QuoteConvention(strings.ToUpper(strings.TrimSpace(s)))
	switch qc {
	case QuoteRate, QuoteYield, QuoteCleanPrice, QuoteDirtyPrice, QuoteFuturesPrice, QuoteSpread, QuoteFXRate,
		QuoteForwardPoints:
		return qc, nil
	}
	return "", fmt.Errorf("instrument.ParseQuoteConvention: unknown quote convention %q", s)
}
