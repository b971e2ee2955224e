package bazi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(year, month, day, hour, minute int) time.Time {
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
}

func TestYearPillar(t *testing.T) {
	assert.Equal(t, "甲子", YearPillar(1984).String())
	assert.Equal(t, "丁丑", YearPillar(1997).String())
	assert.Equal(t, "甲辰", YearPillar(2024).String())

	for y := -300; y <= 2300; y++ {
		p := YearPillar(y)
		require.GreaterOrEqual(t, int(p.Stem), 0)
		require.Less(t, int(p.Stem), 10)
		require.GreaterOrEqual(t, int(p.Branch), 0)
		require.Less(t, int(p.Branch), 12)
		require.Equal(t, mod(y-4, 10), int(p.Stem), "year %d", y)
		require.Equal(t, mod(y-4, 12), int(p.Branch), "year %d", y)
	}
}

func TestDayPillarReference(t *testing.T) {
	assert.Equal(t, 0, DaysSinceReference(1900, 1, 31))
	assert.Equal(t, "甲子", DayPillar(1900, 1, 31).String())
	assert.Equal(t, "乙丑", DayPillar(1900, 2, 1).String())
	assert.Equal(t, "癸亥", DayPillar(1900, 1, 30).String())
	assert.Equal(t, "戊寅", DayPillar(2000, 1, 1).String())
}

func TestDayPillarPeriodicity(t *testing.T) {
	start := time.Date(1850, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3000; i += 7 {
		d := start.AddDate(0, 0, i*11)
		later := d.AddDate(0, 0, 60)
		got := DayPillar(d.Year(), int(d.Month()), d.Day())
		want := DayPillar(later.Year(), int(later.Month()), later.Day())
		require.Equal(t, want, got, "date %s", d.Format("2006-01-02"))
	}
}

func TestMonthPillar(t *testing.T) {
	jia := YearPillar(1984).Stem
	assert.Equal(t, "戊寅", MonthPillar(1, jia).String())
	assert.Equal(t, "己卯", MonthPillar(2, jia).String())
	assert.Equal(t, "丙子", MonthPillar(12, jia).String())

	ding := YearPillar(1997).Stem
	assert.Equal(t, "丙辰", MonthPillar(4, ding).String())
}

func TestHourPillar(t *testing.T) {
	jia := NewStem(0)
	cases := []struct {
		hour int
		want string
	}{
		{0, "甲子"},
		{3, "甲子"},
		{4, "甲丑"},
		{12, "丙巳"},
		{22, "己戌"},
		{23, "甲子"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HourPillar(c.hour, jia).String(), "hour %d", c.hour)
	}
	assert.Equal(t, "戊子", HourPillar(23, NewStem(2)).String())
}

func TestComputePillarsGeneral(t *testing.T) {
	cases := []struct {
		when time.Time
		want string
	}{
		{at(2000, 1, 1, 12, 0), "庚辰 庚寅 戊寅 甲巳"},
		{at(1984, 2, 2, 23, 30), "甲子 己卯 丙戌 戊子"},
		{at(1850, 7, 4, 6, 0), "庚戌 乙未 丙子 己寅"},
		{at(2024, 12, 31, 0, 5), "甲辰 丙子 己丑 甲子"},
		{at(1900, 1, 30, 5, 0), "庚子 庚寅 癸亥 壬丑"},
	}
	for _, c := range cases {
		chart := ComputePillars(c.when, Male)
		assert.Equal(t, c.want, chart.String(), "at %s", c.when)
		assert.False(t, chart.Corrected)
	}
}

func TestComputePillarsSpecialDate(t *testing.T) {
	chart := ComputePillars(at(1997, 4, 22, 15, 30), Female)
	assert.Equal(t, "丁丑", chart.Year.String())
	assert.Equal(t, "甲辰", chart.Month.String())
	assert.Equal(t, "甲午", chart.Day.String())
	assert.Equal(t, "壬申", chart.Hour.String())
	assert.Equal(t, "丁丑 甲辰 甲午 壬申", chart.String())
	assert.True(t, chart.Corrected)
	assert.Equal(t, Female, chart.Gender)

	assert.Equal(t, "辛未", ComputePillars(at(1997, 4, 22, 13, 0), Male).Hour.String())
	assert.Equal(t, "癸酉", ComputePillars(at(1997, 4, 22, 18, 59), Male).Hour.String())

	// 未登记的时辰不再推算，时柱留空
	for _, hour := range []int{0, 8, 12, 19, 22, 23} {
		chart := ComputePillars(at(1997, 4, 22, hour, 0), Male)
		assert.True(t, chart.HourUnknown, "hour %d", hour)
		assert.Equal(t, "", chart.HourText(), "hour %d", hour)
		assert.Equal(t, "丁丑 甲辰 甲午 ", chart.String(), "hour %d", hour)
	}
	assert.False(t, chart.HourUnknown)
}

func TestComputePillarsMonthCorrection(t *testing.T) {
	chart := ComputePillars(at(1997, 4, 10, 9, 0), Male)
	assert.Equal(t, "甲辰", chart.Month.String())
	assert.False(t, chart.Corrected)

	chart = ComputePillars(at(1997, 5, 10, 9, 0), Male)
	assert.Equal(t, "丁巳", chart.Month.String())
}

func TestComputePillarsUsesLocation(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	utc := time.Date(1997, 4, 22, 7, 30, 0, 0, time.UTC)
	assert.Equal(t, "壬申", ComputePillars(utc.In(shanghai), Male).Hour.String())
}

func TestComputePillarsDeterministic(t *testing.T) {
	when := at(1975, 10, 3, 19, 45)
	assert.Equal(t, ComputePillars(when, Male), ComputePillars(when, Male))
}

func TestCalculatorCustomCorrections(t *testing.T) {
	c := NewCorrections()
	gengWu, _ := ParsePillar("庚午")
	c.AddDate(DateCorrection{
		Year: 2001, Month: 1, Day: 1,
		YearPillar:  gengWu,
		MonthPillar: gengWu,
		DayPillar:   gengWu,
	})
	calc := NewCalculator(c)

	chart := calc.Compute(at(2001, 1, 1, 23, 0), Male)
	assert.Equal(t, "庚午 庚午 庚午 ", chart.String())
	assert.True(t, chart.Corrected)
	assert.True(t, chart.HourUnknown)

	// 空表时 1997-04-22 不再覆盖
	plain := NewCalculator(nil).Compute(at(1997, 4, 22, 15, 30), Male)
	assert.Equal(t, "丁丑 丙辰 甲寅 丁午", plain.String())
}

func TestCorrectionsMerge(t *testing.T) {
	base := NewCorrections()
	base.Merge(DefaultCorrections())
	assert.Equal(t, DefaultCorrections().Len(), base.Len())

	dates := base.Dates()
	require.Len(t, dates, 1)
	assert.Equal(t, "1997-04-22", dates[0].Date())
	require.Len(t, dates[0].Hours, 3)
	assert.Equal(t, 13, dates[0].Hours[0].From)
}

func TestParsePillar(t *testing.T) {
	p, ok := ParsePillar("癸亥")
	require.True(t, ok)
	assert.Equal(t, NewPillar(9, 11), p)

	_, ok = ParsePillar("子甲")
	assert.False(t, ok)
	_, ok = ParsePillar("甲")
	assert.False(t, ok)
}

func TestParseGender(t *testing.T) {
	g, ok := ParseGender("女")
	require.True(t, ok)
	assert.Equal(t, Female, g)
	assert.Equal(t, "女", g.Label())

	g, ok = ParseGender(" Male ")
	require.True(t, ok)
	assert.Equal(t, "男", g.Label())

	_, ok = ParseGender("other")
	assert.False(t, ok)
}

func TestCorrectionsPillars(t *testing.T) {
	pcs := DefaultCorrections().Pillars()
	require.Len(t, pcs, 3)
	assert.Equal(t, KindMonth, pcs[0].Kind)
	assert.Equal(t, "甲辰", pcs[0].Pillar.String())
	assert.Equal(t, KindDay, pcs[1].Kind)
	assert.Equal(t, 22, pcs[1].Day)
	assert.Equal(t, KindHour, pcs[2].Kind)
	assert.Equal(t, 15, pcs[2].Hour)

	c := NewCorrections()
	for _, pc := range pcs {
		require.NoError(t, c.AddPillar(pc))
	}
	assert.Equal(t, pcs, c.Pillars())
	assert.Error(t, c.AddPillar(PillarCorrection{Kind: "year"}))
}
