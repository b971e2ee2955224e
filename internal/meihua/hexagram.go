// Package meihua 梅花易数起卦
package meihua

import (
	"fmt"
	"time"
	"unicode"

	"github.com/rivo/uniseg"
	"golang.org/x/text/width"
)

var trigramSymbols = [8]string{"坤", "震", "坎", "兑", "艮", "离", "巽", "乾"}

// Trigram 八卦索引，0-7
type Trigram int

func (t Trigram) String() string {
	return trigramSymbols[((int(t)%8)+8)%8]
}

// Hexagram 起卦结果
type Hexagram struct {
	Upper        Trigram
	Lower        Trigram
	ChangingLine int
}

// Ordinal 卦序 1-64
func (h Hexagram) Ordinal() int {
	return int(h.Upper)*8 + int(h.Lower) + 1
}

// Name 上下卦名，如 "坤震"
func (h Hexagram) Name() string {
	return h.Upper.String() + h.Lower.String()
}

// String 如 "第2卦 坤震卦 变爻: 第3爻"
func (h Hexagram) String() string {
	return fmt.Sprintf("第%d卦 %s卦 变爻: 第%d爻", h.Ordinal(), h.Name(), h.ChangingLine)
}

// Payload 起卦素材；Now 由调用方注入
type Payload struct {
	Now  time.Time
	Text string
}

// ComputeHexagram 按方法起卦，MethodAuto 先经 SelectMethod 解析
func ComputeHexagram(method Method, p Payload) Hexagram {
	switch Resolve(method, p.Text) {
	case MethodNumber:
		return FromSum(DigitSum(p.Text))
	case MethodName:
		return FromSum(NameValue(p.Text))
	default:
		return FromTime(p.Now)
	}
}

// FromTime 时间起卦：时取上卦、分取下卦、秒定变爻
func FromTime(now time.Time) Hexagram {
	return Hexagram{
		Upper:        Trigram(now.Hour() % 8),
		Lower:        Trigram(now.Minute() % 8),
		ChangingLine: now.Second()%6 + 1,
	}
}

// FromSum 数字与姓名起卦共用的推导
func FromSum(sum int) Hexagram {
	if sum < 0 {
		sum = -sum
	}
	return Hexagram{
		Upper:        Trigram(sum % 8),
		Lower:        Trigram((sum / 8) % 8),
		ChangingLine: (sum/64)%6 + 1,
	}
}

// DigitSum 累加所有十进制数字（含全角与其他文字的数字），其余字符忽略
func DigitSum(s string) int {
	sum := 0
	for _, r := range width.Fold.String(s) {
		if v, ok := digitValue(r); ok {
			sum += v
		}
	}
	return sum
}

// digitValue Nd 类字符的数值；Nd 在码表中按 0-9 连续成组
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	if r < 0x80 || !unicode.IsDigit(r) {
		return 0, false
	}
	for _, rg := range unicode.Nd.R16 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) && rg.Stride == 1 {
			return int(r-rune(rg.Lo)) % 10, true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) && rg.Stride == 1 {
			return int(r-rune(rg.Lo)) % 10, true
		}
	}
	return 0, false
}

// NameValue 累加每个字符（字素簇）首个码点的值
func NameValue(s string) int {
	sum := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if runes := g.Runes(); len(runes) > 0 {
			sum += int(runes[0])
		}
	}
	return sum
}
