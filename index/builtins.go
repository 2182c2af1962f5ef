package index

import (
	"github.com/Aqumen-Tech/aqumenlib/calendar"
	"github.com/Aqumen-Tech/aqumenlib/currency"
	"github.com/Aqumen-Tech/aqumenlib/dates"
)

var (
	overnight = dates.Term{Length: 1, Unit: dates.UnitDays}
	m1        = dates.Term{Length: 1, Unit: dates.UnitMonths}
	m3        = dates.Term{Length: 3, Unit: dates.UnitMonths}
	m6        = dates.Term{Length: 6, Unit: dates.UnitMonths}
	m12       = dates.Term{Length: 12, Unit: dates.UnitMonths}
)

// Overnight indices.
var (
	AONIA = register(&RateIndex{Name: "AONIA", Description: "Australian overnight index average",
		Currency: currency.AUD, Tenor: overnight, SettleDays: 0, Calendar: calendar.WEEKENDS, DayCount: dates.ACT365F})
	CORRA = register(&RateIndex{Name: "CORRA", Description: "Canadian overnight repo rate average",
		Currency: currency.CAD, Tenor: overnight, SettleDays: 1, Calendar: calendar.WEEKENDS, DayCount: dates.ACT365F})
	ESTR = register(&RateIndex{Name: "ESTR", Description: "Euro short-term rate",
		Currency: currency.EUR, Tenor: overnight, SettleDays: 0, Calendar: calendar.TARGET, DayCount: dates.ACT360})
	FEDFUNDS = register(&RateIndex{Name: "FEDFUNDS", Description: "Fed funds effective rate",
		Currency: currency.USD, Tenor: overnight, SettleDays: 1, Calendar: calendar.USGS, DayCount: dates.ACT360})
	SARON = register(&RateIndex{Name: "SARON", Description: "Swiss average rate overnight",
		Currency: currency.CHF, Tenor: overnight, SettleDays: 0, Calendar: calendar.WEEKENDS, DayCount: dates.ACT360})
	SOFR = register(&RateIndex{Name: "SOFR", Description: "Secured overnight financing rate",
		Currency: currency.USD, Tenor: overnight, SettleDays: 0, Calendar: calendar.USGS, DayCount: dates.ACT360})
	SONIA = register(&RateIndex{Name: "SONIA", Description: "Sterling overnight index average",
		Currency: currency.GBP, Tenor: overnight, SettleDays: 0, Calendar: calendar.GBLO, DayCount: dates.ACT365F})
	TONAR = register(&RateIndex{Name: "TONAR", Description: "Tokyo overnight average rate",
		Currency: currency.JPY, Tenor: overnight, SettleDays: 1, Calendar: calendar.JPTO, DayCount: dates.ACT365F})
)

// Term indices.
var (
	BBSW3M = register(&RateIndex{Name: "BBSW3M", Description: "Bank bill swap rate 3M",
		Currency: currency.AUD, Tenor: m3, SettleDays: 0, Calendar: calendar.WEEKENDS, DayCount: dates.ACT365F})
	BBSW6M = register(&RateIndex{Name: "BBSW6M", Description: "Bank bill swap rate 6M",
		Currency: currency.AUD, Tenor: m6, SettleDays: 0, Calendar: calendar.WEEKENDS, DayCount: dates.ACT365F})
	BKBM3M = register(&RateIndex{Name: "BKBM3M", Description: "NZ bank bill 3M",
		Currency: currency.NZD, Tenor: m3, SettleDays: 0, Calendar: calendar.WEEKENDS, DayCount: dates.ACT365F})
	BUBOR6M = register(&RateIndex{Name: "BUBOR6M", Description: "Budapest interbank 6M",
		Currency: currency.HUF, Tenor: m6, SettleDays: 2, Calendar: calendar.TARGET, DayCount: dates.ACT360})
	CIBOR6M = register(&RateIndex{Name: "CIBOR6M", Description: "Copenhagen interbank 6M",
		Currency: currency.DKK, Tenor: m6, SettleDays: 0, Calendar: calendar.WEEKENDS, DayCount: dates.ACT360})
	EURIBOR1M = register(&RateIndex{Name: "EURIBOR1M", Description: "Euro interbank 1M",
		Currency: currency.EUR, Tenor: m1, SettleDays: 2, Calendar: calendar.TARGET, DayCount: dates.ACT360, EndOfMonth: true})
	EURIBOR3M = register(&RateIndex{Name: "EURIBOR3M", Description: "Euro interbank 3M",
		Currency: currency.EUR, Tenor: m3, SettleDays: 2, Calendar: calendar.TARGET, DayCount: dates.ACT360, EndOfMonth: true})
	EURIBOR6M = register(&RateIndex{Name: "EURIBOR6M", Description: "Euro interbank 6M",
		Currency: currency.EUR, Tenor: m6, SettleDays: 2, Calendar: calendar.TARGET, DayCount: dates.ACT360, EndOfMonth: true})
	EURIBOR12M = register(&RateIndex{Name: "EURIBOR12M", Description: "Euro interbank 12M",
		Currency: currency.EUR, Tenor: m12, SettleDays: 2, Calendar: calendar.TARGET, DayCount: dates.ACT360, EndOfMonth: true})
	HIBOR3M = register(&RateIndex{Name: "HIBOR3M", Description: "Hong Kong interbank 3M",
		Currency: currency.HKD, Tenor: m3, SettleDays: 0, Calendar: calendar.WEEKENDS, DayCount: dates.ACT365F})
	JIBAR3M = register(&RateIndex{Name: "JIBAR3M", Description: "Johannesburg interbank 3M",
		Currency: currency.ZAR, Tenor: m3, SettleDays: 0, Calendar: calendar.WEEKENDS, DayCount: dates.ACT365F})
	NIBOR6M = register(&RateIndex{Name: "NIBOR6M", Description: "Norwegian interbank 6M",
		Currency: currency.NOK, Tenor: m6, SettleDays: 2, Calendar: calendar.WEEKENDS, DayCount: dates.ACT360})
	PRIBOR6M = register(&RateIndex{Name: "PRIBOR6M", Description: "Prague interbank 6M",
		Currency: currency.CZK, Tenor: m6, SettleDays: 2, Calendar: calendar.WEEKENDS, DayCount: dates.ACT360})
	STIBOR3M = register(&RateIndex{Name: "STIBOR3M", Description: "Stockholm interbank 3M",
		Currency: currency.SEK, Tenor: m3, SettleDays: 2, Calendar: calendar.WEEKENDS, DayCount: dates.ACT360})
	TIIE28D = register(&RateIndex{Name: "TIIE28D", Description: "Mexican interbank equilibrium 28D",
		Currency: currency.MXN, Tenor: dates.Term{Length: 28, Unit: dates.UnitDays}, SettleDays: 1, Calendar: calendar.WEEKENDS, DayCount: dates.ACT360})
	WIBOR6M = register(&RateIndex{Name: "WIBOR6M", Description: "Warsaw interbank 6M",
		Currency: currency.PLN, Tenor: m6, SettleDays: 2, Calendar: calendar.WEEKENDS, DayCount: dates.ACT365F})
)
