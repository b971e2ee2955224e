package corrections

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fortune-backend/internal/bazi"
)

// File YAML 修正表
//
//	dates:
//	  - date: "1997-04-22"
//	    year: 丁丑
//	    month: 甲辰
//	    day: 甲午
//	    hours:
//	      - {from: 15, to: 17, pillar: 壬申}
//	pillars:
//	  - {kind: month, year: 1997, month: 4, pillar: 甲辰}
type File struct {
	Dates   []DateEntry   `yaml:"dates"`
	Pillars []PillarEntry `yaml:"pillars"`
}

type DateEntry struct {
	Date  string      `yaml:"date"`
	Year  string      `yaml:"year"`
	Month string      `yaml:"month"`
	Day   string      `yaml:"day"`
	Hours []HourEntry `yaml:"hours,omitempty"`
}

type HourEntry struct {
	From   int    `yaml:"from"`
	To     int    `yaml:"to"`
	Pillar string `yaml:"pillar"`
}

type PillarEntry struct {
	Kind   string `yaml:"kind"`
	Year   int    `yaml:"year"`
	Month  int    `yaml:"month"`
	Day    int    `yaml:"day,omitempty"`
	Hour   int    `yaml:"hour,omitempty"`
	Pillar string `yaml:"pillar"`
}

// ReadYAMLFile 读取并校验 YAML 修正表
func ReadYAMLFile(path string) (*bazi.Corrections, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseYAML(f)
}

// ParseYAML 解析并校验，任何一条不合法都整体失败
func ParseYAML(r io.Reader) (*bazi.Corrections, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("解析YAML失败: %w", err)
	}

	c := bazi.NewCorrections()
	for i, e := range file.Dates {
		dc, err := e.toCorrection()
		if err != nil {
			return nil, fmt.Errorf("dates[%d]: %w", i, err)
		}
		c.AddDate(dc)
	}
	for i, e := range file.Pillars {
		pc, err := e.toCorrection()
		if err != nil {
			return nil, fmt.Errorf("pillars[%d]: %w", i, err)
		}
		if err := c.AddPillar(pc); err != nil {
			return nil, fmt.Errorf("pillars[%d]: %w", i, err)
		}
	}
	return c, nil
}

// MarshalYAML 导出为 YAML
func MarshalYAML(c *bazi.Corrections) ([]byte, error) {
	var file File
	for _, dc := range c.Dates() {
		e := DateEntry{
			Date:  dc.Date(),
			Year:  dc.YearPillar.String(),
			Month: dc.MonthPillar.String(),
			Day:   dc.DayPillar.String(),
		}
		for _, w := range dc.Hours {
			e.Hours = append(e.Hours, HourEntry{From: w.From, To: w.To, Pillar: w.Pillar.String()})
		}
		file.Dates = append(file.Dates, e)
	}
	for _, pc := range c.Pillars() {
		file.Pillars = append(file.Pillars, PillarEntry{
			Kind: pc.Kind, Year: pc.Year, Month: pc.Month, Day: pc.Day, Hour: pc.Hour,
			Pillar: pc.Pillar.String(),
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e DateEntry) toCorrection() (bazi.DateCorrection, error) {
	d, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return bazi.DateCorrection{}, fmt.Errorf("日期格式错误: %q", e.Date)
	}
	dc := bazi.DateCorrection{Year: d.Year(), Month: int(d.Month()), Day: d.Day()}
	if dc.YearPillar, err = parsePillar(e.Year); err != nil {
		return dc, err
	}
	if dc.MonthPillar, err = parsePillar(e.Month); err != nil {
		return dc, err
	}
	if dc.DayPillar, err = parsePillar(e.Day); err != nil {
		return dc, err
	}
	for _, h := range e.Hours {
		if h.From < 0 || h.To > 24 || h.From >= h.To {
			return dc, fmt.Errorf("时辰区间错误: [%d, %d)", h.From, h.To)
		}
		p, err := parsePillar(h.Pillar)
		if err != nil {
			return dc, err
		}
		dc.Hours = append(dc.Hours, bazi.HourWindow{From: h.From, To: h.To, Pillar: p})
	}
	return dc, nil
}

func (e PillarEntry) toCorrection() (bazi.PillarCorrection, error) {
	pc := bazi.PillarCorrection{Kind: e.Kind, Year: e.Year, Month: e.Month}
	if e.Month < 1 || e.Month > 12 {
		return pc, fmt.Errorf("月份错误: %d", e.Month)
	}
	switch e.Kind {
	case bazi.KindDay, bazi.KindHour:
		if e.Day < 1 || e.Day > 31 {
			return pc, fmt.Errorf("日期错误: %d", e.Day)
		}
		pc.Day = e.Day
	}
	if e.Kind == bazi.KindHour {
		if e.Hour < 0 || e.Hour > 23 {
			return pc, fmt.Errorf("小时错误: %d", e.Hour)
		}
		pc.Hour = e.Hour
	}
	p, err := parsePillar(e.Pillar)
	if err != nil {
		return pc, err
	}
	pc.Pillar = p
	return pc, nil
}
