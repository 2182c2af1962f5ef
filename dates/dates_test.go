package dates

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aqumen-Tech/aqumenlib/calendar"
)

func TestParse(t *testing.T) {
	t.Parallel()

	want := YMD(2023, time.November, 17)
	for _, in := range []any{"2023-11-17", "20231117", 20231117, int64(20231117), want.Add(5 * time.Hour)} {
		got, err := Parse(in)
		require.NoError(t, err, "%v", in)
		assert.Equal(t, want, got)
	}

	_, err := Parse("2023-13-01")
	assert.Error(t, err)
	_, err = Parse(20230231)
	assert.Error(t, err)
	_, err = Parse(3.5)
	assert.Error(t, err)

	assert.Equal(t, 20231117, ISOInt(want))
	assert.Equal(t, want, FromExcelSerial(ExcelSerial(want)))
	assert.Equal(t, 45247, ExcelSerial(want))
}

func TestAddMonth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, YMD(2024, time.February, 29), AddMonth(YMD(2024, time.January, 31), 1))
	assert.Equal(t, YMD(2023, time.February, 28), AddMonth(YMD(2024, time.February, 29), -12))
	assert.Equal(t, YMD(2025, time.March, 15), AddMonth(YMD(2024, time.December, 15), 3))
}

func TestTerm(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in    string
		years float64
	}{
		{"1D", 1.0 / 365},
		{"2W", 14.0 / 365},
		{"18M", 1.5},
		{"30Y", 30},
		{"ON", 1.0 / 365},
	}
	for _, c := range cases {
		term, err := ParseTerm(c.in)
		require.NoError(t, err, c.in)
		assert.InDelta(t, c.years, term.Years(), 1e-12, c.in)
	}

	_, err := ParseTerm("5Q")
	assert.Error(t, err)
	_, err = ParseTerm("Y")
	assert.Error(t, err)

	assert.Equal(t, "10Y", MustTerm("10y").String())
	assert.Equal(t, YMD(2024, time.February, 29), MustTerm("1M").AddTo(YMD(2024, time.January, 31), 1))
	assert.Equal(t, YMD(2023, time.December, 31), MustTerm("1W").AddTo(YMD(2024, time.January, 14), -2))

	var tm Term
	require.NoError(t, tm.UnmarshalText([]byte("6M")))
	assert.Equal(t, Term{6, UnitMonths}, tm)
}

func TestFrequency(t *testing.T) {
	t.Parallel()

	f, err := ParseFrequency("6M")
	require.NoError(t, err)
	assert.Equal(t, Semiannual, f)
	f, err = ParseFrequency("quarterly")
	require.NoError(t, err)
	assert.Equal(t, Quarterly, f)
	_, err = ParseFrequency("5M")
	assert.Error(t, err)
	assert.Equal(t, 12, Annual.Months())
	assert.Equal(t, 0, Once.Months())
}

func TestYearFraction(t *testing.T) {
	t.Parallel()

	start := YMD(2023, time.January, 31)
	end := YMD(2023, time.July, 31)

	assert.InDelta(t, 181.0/360, YearFraction(start, end, ACT360), 1e-14)
	assert.InDelta(t, 181.0/365, YearFraction(start, end, ACT365F), 1e-14)
	assert.InDelta(t, 180.0/360, YearFraction(start, end, Thirty360), 1e-14)
	assert.InDelta(t, 180.0/360, YearFraction(start, end, Thirty360E), 1e-14)
	assert.InDelta(t, -181.0/360, YearFraction(end, start, ACT360), 1e-14)

	// 30/360 US only caps the end date when the start was capped.
	assert.InDelta(t, 30.0/360, YearFraction(YMD(2023, time.March, 30), YMD(2023, time.April, 30), Thirty360), 1e-14)
	assert.InDelta(t, 30.0/360, YearFraction(YMD(2023, time.March, 1), YMD(2023, time.March, 31), Thirty360), 1e-14)
	assert.InDelta(t, 29.0/360, YearFraction(YMD(2023, time.March, 1), YMD(2023, time.March, 31), Thirty360E), 1e-14)

	// 30E/360 ISDA treats end of February as day 30.
	assert.InDelta(t, 30.0/360, YearFraction(YMD(2023, time.January, 31), YMD(2023, time.February, 28), Thirty360EISDA), 1e-14)

	isda := YearFraction(YMD(2023, time.July, 1), YMD(2024, time.July, 1), ACTACTISDA)
	assert.InDelta(t, 184.0/365+182.0/366, isda, 1e-14)

	icma := YearFraction(YMD(2023, time.July, 1), YMD(2025, time.January, 1), ACTACTICMA)
	assert.InDelta(t, 1+184.0/365, icma, 1e-14)

	period := YearFractionInPeriod(YMD(2023, time.March, 1), YMD(2023, time.May, 15),
		YMD(2023, time.February, 15), YMD(2023, time.August, 15), Semiannual, ACTACTICMA)
	assert.InDelta(t, 75.0/(2*181), period, 1e-14)

	dc, err := ParseDayCount("THIRTY360_BONDBASIS")
	require.NoError(t, err)
	assert.Equal(t, Thirty360, dc)
	_, err = ParseDayCount("BUS/252")
	assert.Error(t, err)
}

func TestGenerateScheduleBackward(t *testing.T) {
	t.Parallel()

	conv := ScheduleConvention{
		Frequency:      Semiannual,
		Calendar:       calendar.TARGET,
		PeriodAdjust:   calendar.ModifiedFollowing,
		MaturityAdjust: calendar.ModifiedFollowing,
	}
	periods, err := GenerateSchedule(YMD(2024, time.January, 10), YMD(2025, time.April, 10), conv)
	require.NoError(t, err)
	require.Len(t, periods, 3)
	// front stub
	assert.Equal(t, YMD(2024, time.January, 10), periods[0].Start)
	assert.Equal(t, YMD(2024, time.April, 10), periods[0].End)
	assert.Equal(t, YMD(2024, time.October, 10), periods[1].End)
	assert.Equal(t, YMD(2025, time.April, 10), periods[2].End)
	for i := 1; i < len(periods); i++ {
		assert.Equal(t, periods[i-1].End, periods[i].Start)
	}
}

func TestGenerateScheduleStubMerge(t *testing.T) {
	t.Parallel()

	conv := ScheduleConvention{Frequency: Annual, Calendar: calendar.WEEKENDS}
	// 2Y plus three days: the three-day stub folds into the first period.
	periods, err := GenerateSchedule(YMD(2024, time.January, 12), YMD(2026, time.January, 15), conv)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, YMD(2024, time.January, 12), periods[0].Start)
	assert.Equal(t, YMD(2025, time.January, 15), periods[0].End)

	fwd := conv
	fwd.Rule = Forward
	fwd.PeriodAdjust = calendar.Following
	periods, err = GenerateSchedule(YMD(2024, time.January, 12), YMD(2026, time.January, 15), fwd)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, YMD(2025, time.January, 13), periods[0].End) // 12th is a Sunday
	assert.Equal(t, YMD(2026, time.January, 15), periods[1].End)
}

func TestGenerateScheduleEdgeCases(t *testing.T) {
	t.Parallel()

	conv := ScheduleConvention{Frequency: Annual, Calendar: calendar.NULL, EndOfMonth: true}
	periods, err := GenerateSchedule(YMD(2024, time.February, 29), YMD(2026, time.February, 28), conv)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, YMD(2025, time.February, 28), periods[0].End)

	short, err := GenerateSchedule(YMD(2024, time.January, 2), YMD(2024, time.February, 2), conv)
	require.NoError(t, err)
	assert.Len(t, short, 1)

	once := ScheduleConvention{Frequency: Once}
	single, err := GenerateSchedule(YMD(2024, time.January, 2), YMD(2034, time.January, 2), once)
	require.NoError(t, err)
	assert.Len(t, single, 1)

	_, err = GenerateSchedule(YMD(2024, time.January, 2), YMD(2024, time.January, 2), conv)
	assert.Error(t, err)
	assert.False(t, math.IsNaN(YearFraction(periods[0].Start, periods[0].End, ACTACTICMA)))
}
