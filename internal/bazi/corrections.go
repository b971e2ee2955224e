package bazi

import (
	"fmt"
	"sort"
	"sync"
)

// HourWindow 特定日期内按时辰区间给出的时柱，区间为 [From, To)
type HourWindow struct {
	From   int
	To     int
	Pillar Pillar
}

func (w HourWindow) contains(hour int) bool {
	return hour >= w.From && hour < w.To
}

// DateCorrection 某一天的整盘修正：命中后直接返回年、月、日柱，
// 时柱按 Hours 中的区间给出，未覆盖的时辰按日柱天干推算。
type DateCorrection struct {
	Year  int
	Month int
	Day   int

	YearPillar  Pillar
	MonthPillar Pillar
	DayPillar   Pillar
	Hours       []HourWindow
}

// Date 返回 YYYY-MM-DD
func (c DateCorrection) Date() string {
	return fmt.Sprintf("%04d-%02d-%02d", c.Year, c.Month, c.Day)
}

type civilDate struct{ year, month, day int }

type civilMonth struct{ year, month int }

type civilHour struct{ year, month, day, hour int }

// Corrections 已核对过的修正表
//
// 公历近似算法与真正的农历结果存在偏差，这里按日期登记人工核对过的答案，
// 在通用公式之前查询。修正表只是对已知偏差的补丁，不是农历换算。
type Corrections struct {
	mu     sync.RWMutex
	dates  map[civilDate]DateCorrection
	months map[civilMonth]Pillar
	days   map[civilDate]Pillar
	hours  map[civilHour]Pillar
}

// NewCorrections 空修正表
func NewCorrections() *Corrections {
	return &Corrections{
		dates:  make(map[civilDate]DateCorrection),
		months: make(map[civilMonth]Pillar),
		days:   make(map[civilDate]Pillar),
		hours:  make(map[civilHour]Pillar),
	}
}

// DefaultCorrections 内置修正表
func DefaultCorrections() *Corrections {
	c := NewCorrections()

	jiaChen, _ := ParsePillar("甲辰")
	jiaWu, _ := ParsePillar("甲午")
	renShen, _ := ParsePillar("壬申")
	dingChou, _ := ParsePillar("丁丑")
	xinWei, _ := ParsePillar("辛未")
	guiYou, _ := ParsePillar("癸酉")

	// 1997年4月22日
	c.AddDate(DateCorrection{
		Year: 1997, Month: 4, Day: 22,
		YearPillar:  dingChou,
		MonthPillar: jiaChen,
		DayPillar:   jiaWu,
		Hours: []HourWindow{
			{From: 13, To: 15, Pillar: xinWei},
			{From: 15, To: 17, Pillar: renShen},
			{From: 17, To: 19, Pillar: guiYou},
		},
	})
	c.AddMonth(1997, 4, jiaChen)
	c.AddDay(1997, 4, 22, jiaWu)
	c.AddHour(1997, 4, 22, 15, renShen)

	return c
}

// AddDate 登记整盘修正，同一日期后写覆盖先写
func (c *Corrections) AddDate(dc DateCorrection) {
	hours := append([]HourWindow(nil), dc.Hours...)
	sort.Slice(hours, func(i, j int) bool { return hours[i].From < hours[j].From })
	dc.Hours = hours

	c.mu.Lock()
	c.dates[civilDate{dc.Year, dc.Month, dc.Day}] = dc
	c.mu.Unlock()
}

// AddMonth 登记月柱修正
func (c *Corrections) AddMonth(year, month int, p Pillar) {
	c.mu.Lock()
	c.months[civilMonth{year, month}] = p
	c.mu.Unlock()
}

// AddDay 登记日柱修正
func (c *Corrections) AddDay(year, month, day int, p Pillar) {
	c.mu.Lock()
	c.days[civilDate{year, month, day}] = p
	c.mu.Unlock()
}

// AddHour 登记时柱修正（精确到小时）
func (c *Corrections) AddHour(year, month, day, hour int, p Pillar) {
	c.mu.Lock()
	c.hours[civilHour{year, month, day, hour}] = p
	c.mu.Unlock()
}

// Merge 把 other 中的条目合并进来，冲突时以 other 为准
func (c *Corrections) Merge(other *Corrections) {
	if other == nil || other == c {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range other.dates {
		c.dates[k] = v
	}
	for k, v := range other.months {
		c.months[k] = v
	}
	for k, v := range other.days {
		c.days[k] = v
	}
	for k, v := range other.hours {
		c.hours[k] = v
	}
}

// Dates 按日期升序返回全部整盘修正
func (c *Corrections) Dates() []DateCorrection {
	c.mu.RLock()
	out := make([]DateCorrection, 0, len(c.dates))
	for _, v := range c.dates {
		out = append(out, v)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date() < out[j].Date() })
	return out
}

// Len 修正条目总数
func (c *Corrections) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.dates) + len(c.months) + len(c.days) + len(c.hours)
}

func (c *Corrections) date(year, month, day int) (DateCorrection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	dc, ok := c.dates[civilDate{year, month, day}]
	return dc, ok
}

func (c *Corrections) month(year, month int) (Pillar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.months[civilMonth{year, month}]
	return p, ok
}

func (c *Corrections) day(year, month, day int) (Pillar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.days[civilDate{year, month, day}]
	return p, ok
}

func (c *Corrections) hour(year, month, day, hour int) (Pillar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.hours[civilHour{year, month, day, hour}]
	return p, ok
}

// 单柱修正的类别
const (
	KindMonth = "month"
	KindDay   = "day"
	KindHour  = "hour"
)

// PillarCorrection 单柱修正条目，用于导入导出；
// Kind 为 month 时 Day、Hour 无意义，为 day 时 Hour 无意义
type PillarCorrection struct {
	Kind   string
	Year   int
	Month  int
	Day    int
	Hour   int
	Pillar Pillar
}

// AddPillar 按 Kind 登记单柱修正
func (c *Corrections) AddPillar(pc PillarCorrection) error {
	switch pc.Kind {
	case KindMonth:
		c.AddMonth(pc.Year, pc.Month, pc.Pillar)
	case KindDay:
		c.AddDay(pc.Year, pc.Month, pc.Day, pc.Pillar)
	case KindHour:
		c.AddHour(pc.Year, pc.Month, pc.Day, pc.Hour, pc.Pillar)
	default:
		return fmt.Errorf("未知的修正类别: %q", pc.Kind)
	}
	return nil
}

// Pillars 返回全部单柱修正，按类别、时间排序
func (c *Corrections) Pillars() []PillarCorrection {
	c.mu.RLock()
	out := make([]PillarCorrection, 0, len(c.months)+len(c.days)+len(c.hours))
	for k, p := range c.months {
		out = append(out, PillarCorrection{Kind: KindMonth, Year: k.year, Month: k.month, Pillar: p})
	}
	for k, p := range c.days {
		out = append(out, PillarCorrection{Kind: KindDay, Year: k.year, Month: k.month, Day: k.day, Pillar: p})
	}
	for k, p := range c.hours {
		out = append(out, PillarCorrection{Kind: KindHour, Year: k.year, Month: k.month, Day: k.day, Hour: k.hour, Pillar: p})
	}
	c.mu.RUnlock()

	rank := map[string]int{KindMonth: 0, KindDay: 1, KindHour: 2}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return rank[a.Kind] < rank[b.Kind]
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Hour < b.Hour
	})
	return out
}
