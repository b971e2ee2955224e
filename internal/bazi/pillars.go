package bazi

import (
	"strings"
	"time"
)

// Gender 性别，只作为解读时的上下文，不参与排盘
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Label 中文标签
func (g Gender) Label() string {
	if g == Female {
		return "女"
	}
	return "男"
}

// ParseGender 支持 male/female 以及 男/女，无法识别时返回 false
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "男":
		return Male, true
	case "female", "f", "女":
		return Female, true
	}
	return "", false
}

// Chart 四柱八字
type Chart struct {
	Year   Pillar
	Month  Pillar
	Day    Pillar
	Hour   Pillar
	Gender Gender

	// Corrected 表示结果来自修正表的整盘覆盖
	Corrected   bool
	// HourUnknown 整盘覆盖但修正表未登记该时辰，时柱为空
	HourUnknown bool
}

// String 四柱以空格分隔，如 "丁丑 甲辰 甲午 壬申"；时柱未知时末尾留空
func (c Chart) String() string {
	return c.Year.String() + " " + c.Month.String() + " " + c.Day.String() + " " + c.HourText()
}

// HourText 时柱文本，未知时为空串
func (c Chart) HourText() string {
	if c.HourUnknown {
		return ""
	}
	return c.Hour.String()
}

// 1900年1月31日作为甲子日
var dayReference = time.Date(1900, time.January, 31, 0, 0, 0, 0, time.UTC)

// 公历月份到月支的大致映射，正月以寅起
var monthBranchMap = [13]int{
	0,
	2,  // 1月 -> 寅
	3,  // 2月 -> 卯
	4,  // 3月 -> 辰
	4,  // 4月 -> 辰
	5,  // 5月 -> 巳
	6,  // 6月 -> 午
	7,  // 7月 -> 未
	8,  // 8月 -> 申
	9,  // 9月 -> 酉
	10, // 10月 -> 戌
	11, // 11月 -> 亥
	0,  // 12月 -> 子
}

// 五虎遁：年干 -> 月干起点
// 甲己起丙，乙庚起戊，丙辛起庚，丁壬起壬，戊癸起甲
var monthStemStart = [10]int{2, 4, 6, 8, 0, 2, 4, 6, 8, 0}

// 小时 -> 时支
var hourBranchTable = [24]int{
	0, 0, 0, 0,
	1, 1,
	2, 2,
	3, 3,
	4, 4,
	5, 5,
	6, 6,
	7, 7,
	8, 8,
	9, 9,
	10, 10,
}

// 五鼠遁：日干 -> 时干起点
// 甲己起甲，乙庚起丙，丙辛起戊，丁壬起庚，戊癸起壬
var hourStemStart = [10]int{0, 2, 4, 6, 8, 0, 2, 4, 6, 8}

// Calculator 排盘器，持有修正表；零值不可用，请使用 NewCalculator
type Calculator struct {
	corrections *Corrections
}

// NewCalculator 使用给定修正表；nil 时使用空表
func NewCalculator(c *Corrections) *Calculator {
	if c == nil {
		c = NewCorrections()
	}
	return &Calculator{corrections: c}
}

var defaultCalculator = NewCalculator(DefaultCorrections())

// ComputePillars 使用内置修正表排盘
func ComputePillars(t time.Time, g Gender) Chart {
	return defaultCalculator.Compute(t, g)
}

// Compute 排四柱
//
// t 按其自身时区取年月日时。月、日、时超出正常范围属于调用方错误，
// 结果未定义但不会 panic。
func (c *Calculator) Compute(t time.Time, g Gender) Chart {
	year, m, day := t.Date()
	month := int(m)
	hour := t.Hour()

	if dc, ok := c.corrections.date(year, month, day); ok {
		chart := Chart{
			Year:        dc.YearPillar,
			Month:       dc.MonthPillar,
			Day:         dc.DayPillar,
			Gender:      g,
			Corrected:   true,
			HourUnknown: true,
		}
		for _, w := range dc.Hours {
			if w.contains(hour) {
				chart.Hour = w.Pillar
				chart.HourUnknown = false
				break
			}
		}
		return chart
	}

	yearPillar := YearPillar(year)
	dayPillar := c.dayPillar(year, month, day)
	return Chart{
		Year:   yearPillar,
		Month:  c.monthPillar(year, month, yearPillar.Stem),
		Day:    dayPillar,
		Hour:   c.hourPillar(year, month, day, hour, dayPillar.Stem),
		Gender: g,
	}
}

// YearPillar 以1984年甲子为基准推年柱
func YearPillar(year int) Pillar {
	return NewPillar(year-4, year-4)
}

// MonthPillar 月柱，不含修正
func MonthPillar(month int, yearStem Stem) Pillar {
	branch := 0
	if month >= 1 && month <= 12 {
		branch = monthBranchMap[month]
	}
	start := monthStemStart[mod(int(yearStem), 10)]
	return NewPillar(start+branch, branch)
}

// DayPillar 日柱，不含修正
func DayPillar(year, month, day int) Pillar {
	days := DaysSinceReference(year, month, day)
	return NewPillar(days, days)
}

// DaysSinceReference 1900-01-31 至给定公历日期的整天数，早于基准日时为负
func DaysSinceReference(year, month, day int) int {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return int((d.Unix() - dayReference.Unix()) / 86400)
}

// HourPillar 时柱，不含修正；23点及以后算作子时
func HourPillar(hour int, dayStem Stem) Pillar {
	if hour >= 23 || hour < 0 {
		hour = 0
	}
	branch := hourBranchTable[hour]
	start := hourStemStart[mod(int(dayStem), 10)]
	return NewPillar(start+branch/2, branch)
}

func (c *Calculator) monthPillar(year, month int, yearStem Stem) Pillar {
	if p, ok := c.corrections.month(year, month); ok {
		return p
	}
	return MonthPillar(month, yearStem)
}

func (c *Calculator) dayPillar(year, month, day int) Pillar {
	if p, ok := c.corrections.day(year, month, day); ok {
		return p
	}
	return DayPillar(year, month, day)
}

func (c *Calculator) hourPillar(year, month, day, hour int, dayStem Stem) Pillar {
	if p, ok := c.corrections.hour(year, month, day, hour); ok {
		return p
	}
	return HourPillar(hour, dayStem)
}
