package calendar

import (
	"sync"
	"time"
)

type yearKey struct {
	cal  CalendarID
	year int
}

var (
	cacheMu sync.RWMutex
	cache   = map[yearKey]map[string]struct{}{}
)

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func holidaysFor(cal CalendarID, year int) map[string]struct{} {
	k := yearKey{cal, year}
	cacheMu.RLock()
	h, ok := cache[k]
	cacheMu.RUnlock()
	if ok {
		return h
	}

	var days []time.Time
	switch cal {
	case TARGET:
		days = targetHolidays(year)
	case GBLO:
		days = ukHolidays(year)
	case USNY:
		days = usSettlementHolidays(year)
	case USGS:
		days = usGovernmentBondHolidays(year)
	case JPTO:
		days = japanHolidays(year)
	}
	h = make(map[string]struct{}, len(days))
	for _, d := range days {
		h[dayKey(d)] = struct{}{}
	}

	cacheMu.Lock()
	cache[k] = h
	cacheMu.Unlock()
	return h
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// easterSunday uses the anonymous Gregorian algorithm.
func easterSunday(y int) time.Time {
	a := y % 19
	b := y / 100
	c := y % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	return date(y, time.Month(month), day)
}

// EasterMonday returns Easter Monday of the given year.
func EasterMonday(y int) time.Time {
	return easterSunday(y).AddDate(0, 0, 1)
}

// GoodFriday returns Good Friday of the given year.
func GoodFriday(y int) time.Time {
	return easterSunday(y).AddDate(0, 0, -2)
}

// observedNearest moves Saturday holidays to Friday and Sunday holidays to Monday.
func observedNearest(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// observedNextMonday moves weekend holidays to the following Monday.
func observedNextMonday(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

func targetHolidays(y int) []time.Time {
	return []time.Time{
		date(y, time.January, 1),
		GoodFriday(y),
		EasterMonday(y),
		date(y, time.May, 1),
		date(y, time.December, 25),
		date(y, time.December, 26),
	}
}

func ukHolidays(y int) []time.Time {
	days := []time.Time{
		observedNextMonday(date(y, time.January, 1)),
		GoodFriday(y),
		EasterMonday(y),
		NthWeekday(-1, time.Monday, y, time.August),
	}

	switch y {
	case 1995, 2020:
		days = append(days, date(y, time.May, 8))
	default:
		days = append(days, NthWeekday(1, time.Monday, y, time.May))
	}
	switch y {
	case 2002:
		days = append(days, date(y, time.June, 3), date(y, time.June, 4))
	case 2012:
		days = append(days, date(y, time.June, 4), date(y, time.June, 5))
	case 2022:
		days = append(days, date(y, time.June, 2), date(y, time.June, 3), date(y, time.September, 19))
	default:
		days = append(days, NthWeekday(-1, time.Monday, y, time.May))
	}
	if y == 2023 {
		days = append(days, date(y, time.May, 8))
	}

	xmas := date(y, time.December, 25)
	switch xmas.Weekday() {
	case time.Friday:
		days = append(days, xmas, date(y, time.December, 28))
	case time.Saturday:
		days = append(days, date(y, time.December, 27), date(y, time.December, 28))
	case time.Sunday:
		days = append(days, date(y, time.December, 26), date(y, time.December, 27))
	default:
		days = append(days, xmas, date(y, time.December, 26))
	}
	return days
}

func usCommonHolidays(y int) []time.Time {
	days := []time.Time{
		NthWeekday(3, time.Monday, y, time.February),
		NthWeekday(-1, time.Monday, y, time.May),
		observedNearest(date(y, time.July, 4)),
		NthWeekday(1, time.Monday, y, time.September),
		NthWeekday(2, time.Monday, y, time.October),
		observedNearest(date(y, time.November, 11)),
		NthWeekday(4, time.Thursday, y, time.November),
		observedNearest(date(y, time.December, 25)),
	}
	if y >= 1983 {
		days = append(days, NthWeekday(3, time.Monday, y, time.January))
	}
	if y >= 2022 {
		days = append(days, observedNearest(date(y, time.June, 19)))
	}
	return days
}

// usNewYear moves a Sunday New Year to Monday; a Saturday one stays on Saturday.
func usNewYear(y int) time.Time {
	d := date(y, time.January, 1)
	if d.Weekday() == time.Sunday {
		return d.AddDate(0, 0, 1)
	}
	return d
}

func usSettlementHolidays(y int) []time.Time {
	days := usCommonHolidays(y)
	days = append(days, usNewYear(y))
	// New Year falling on the next Saturday is observed on 31 December.
	if date(y, time.December, 31).Weekday() == time.Friday {
		days = append(days, date(y, time.December, 31))
	}
	return days
}

func usGovernmentBondHolidays(y int) []time.Time {
	days := usCommonHolidays(y)
	days = append(days, usNewYear(y), GoodFriday(y))
	return days
}

func japanHolidays(y int) []time.Time {
	offset := float64(y - 1980)
	leap := float64((y - 1980) / 4)
	vernal := int(20.8431 + 0.242194*offset - leap)
	autumnal := int(23.2488 + 0.242194*offset - leap)

	national := []time.Time{
		date(y, time.January, 1),
		NthWeekday(2, time.Monday, y, time.January),
		date(y, time.February, 11),
		date(y, time.March, vernal),
		date(y, time.April, 29),
		date(y, time.May, 3),
		date(y, time.May, 4),
		date(y, time.May, 5),
		NthWeekday(3, time.Monday, y, time.July),
		NthWeekday(3, time.Monday, y, time.September),
		date(y, time.September, autumnal),
		NthWeekday(2, time.Monday, y, time.October),
		date(y, time.November, 3),
		date(y, time.November, 23),
	}
	if y >= 2016 {
		national = append(national, date(y, time.August, 11))
	}
	if y >= 2020 {
		national = append(national, date(y, time.February, 23))
	}

	set := make(map[string]struct{}, len(national))
	for _, d := range national {
		set[dayKey(d)] = struct{}{}
	}
	days := append([]time.Time{}, national...)
	// Substitute holiday: a Sunday holiday moves to the next non-holiday weekday.
	for _, d := range national {
		if d.Weekday() != time.Sunday {
			continue
		}
		s := d.AddDate(0, 0, 1)
		for {
			if _, taken := set[dayKey(s)]; !taken {
				break
			}
			s = s.AddDate(0, 0, 1)
		}
		set[dayKey(s)] = struct{}{}
		days = append(days, s)
	}
	// Bank holidays.
	days = append(days, date(y, time.January, 2), date(y, time.January, 3), date(y, time.December, 31))
	return days
}
