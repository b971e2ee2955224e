// Package bazi 生辰八字（四柱）计算
//
// 以公历日期直接推算年、月、日、时四柱，并不做真正的农历换算；
// 已知与农历结果不符的日期通过修正表（Corrections）单独处理。
package bazi

// 天干: 甲(0)、乙(1)、丙(2)、丁(3)、戊(4)、己(5)、庚(6)、辛(7)、壬(8)、癸(9)
var stemSymbols = [10]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

// 地支: 子(0)、丑(1)、寅(2)、卯(3)、辰(4)、巳(5)、午(6)、未(7)、申(8)、酉(9)、戌(10)、亥(11)
var branchSymbols = [12]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

// Stem 天干索引，0-9
type Stem int

// Branch 地支索引，0-11
type Branch int

// NewStem 对任意整数取模得到天干，负数余数加 10 修正
func NewStem(i int) Stem {
	return Stem(mod(i, 10))
}

// NewBranch 对任意整数取模得到地支，负数余数加 12 修正
func NewBranch(i int) Branch {
	return Branch(mod(i, 12))
}

func (s Stem) String() string {
	return stemSymbols[mod(int(s), 10)]
}

func (b Branch) String() string {
	return branchSymbols[mod(int(b), 12)]
}

// Pillar 一柱：天干 + 地支
type Pillar struct {
	Stem   Stem
	Branch Branch
}

// NewPillar 构造一柱，索引自动归一化
func NewPillar(stem, branch int) Pillar {
	return Pillar{Stem: NewStem(stem), Branch: NewBranch(branch)}
}

func (p Pillar) String() string {
	return p.Stem.String() + p.Branch.String()
}

// ParsePillar 解析两个字符的干支，如 "甲子"
func ParsePillar(s string) (Pillar, bool) {
	r := []rune(s)
	if len(r) != 2 {
		return Pillar{}, false
	}
	stem, ok := indexOf(stemSymbols[:], string(r[0]))
	if !ok {
		return Pillar{}, false
	}
	branch, ok := indexOf(branchSymbols[:], string(r[1]))
	if !ok {
		return Pillar{}, false
	}
	return NewPillar(stem, branch), true
}

func indexOf(symbols []string, s string) (int, bool) {
	for i, sym := range symbols {
		if sym == s {
			return i, true
		}
	}
	return 0, false
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
