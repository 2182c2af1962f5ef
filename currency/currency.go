// Package currency defines ISO-4217 currency codes.
package currency

import (
	"fmt"
	"strings"
)

// Currency is an ISO-4217 code.
type Currency string

const (
	AUD Currency = "AUD"
	ARS Currency = "ARS"
	BRL Currency = "BRL"
	CAD Currency = "CAD"
	CHF Currency = "CHF"
	CLP Currency = "CLP"
	CNY Currency = "CNY"
	COP Currency = "COP"
	CZK Currency = "CZK"
	DKK Currency = "DKK"
	EGP Currency = "EGP"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	HKD Currency = "HKD"
	HUF Currency = "HUF"
	IDR Currency = "IDR"
	ILS Currency = "ILS"
	INR Currency = "INR"
	JPY Currency = "JPY"
	KRW Currency = "KRW"
	MXN Currency = "MXN"
	MYR Currency = "MYR"
	NOK Currency = "NOK"
	NZD Currency = "NZD"
	PEN Currency = "PEN"
	PHP Currency = "PHP"
	PLN Currency = "PLN"
	RON Currency = "RON"
	RUB Currency = "RUB"
	SEK Currency = "SEK"
	SGD Currency = "SGD"
	THB Currency = "THB"
	TRY Currency = "TRY"
	USD Currency = "USD"
	ZAR Currency = "ZAR"
)

var known = map[Currency]struct{}{}

func init() {
	for _, c := range All() {
		known[c] = struct{}{}
	}
}

// All returns every supported currency.
func All() []Currency {
	return []Currency{
		AUD, ARS, BRL, CAD, CHF, CLP, CNY, COP, CZK, DKK, EGP, EUR, GBP, HKD, HUF, IDR, ILS,
		INR, JPY, KRW, MXN, MYR, NOK, NZD, PEN, PHP, PLN, RON, RUB, SEK, SGD, THB, TRY, USD, ZAR,
	}
}

// Parse validates a currency code.
func Parse(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := known[c]; !ok {
		return "", fmt.Errorf("currency.Parse: unsupported currency %q", s)
	}
	return c, nil
}

func (c Currency) String() string {
	return string(c)
}

// Amounts maps currencies to values.
type Amounts map[Currency]float64
