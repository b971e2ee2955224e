package meihua

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 2, 26, 14, 37, 59, 0, time.UTC)

func TestFromTime(t *testing.T) {
	h := ComputeHexagram(MethodTime, Payload{Now: fixedNow})
	assert.Equal(t, Trigram(6), h.Upper)
	assert.Equal(t, Trigram(5), h.Lower)
	assert.Equal(t, 6, h.ChangingLine)
	assert.Equal(t, 54, h.Ordinal())
	assert.Equal(t, "第54卦 巽离卦 变爻: 第6爻", h.String())
}

func TestNumberMethod(t *testing.T) {
	h := ComputeHexagram(MethodNumber, Payload{Text: "12345"})
	assert.Equal(t, "第58卦 乾震卦 变爻: 第1爻", h.String())

	// 非数字字符被丢弃
	assert.Equal(t, h, ComputeHexagram(MethodNumber, Payload{Text: "1a2b3c4d5"}))

	// 全角数字与半角等价
	assert.Equal(t, 6, DigitSum("１２３"))
	assert.Equal(t, 0, DigitSum("没有数字"))

	// 其他文字的十进制数字同样计入，非十进制数字不计
	assert.Equal(t, 12, DigitSum("٣٤٥"))
	assert.Equal(t, 9, DigitSum("𝟡"))
	assert.Equal(t, 3, DigitSum("১২"))
	assert.Equal(t, 0, DigitSum("½Ⅻ"))
	assert.Equal(t, ComputeHexagram(MethodNumber, Payload{Text: "345"}),
		ComputeHexagram(MethodAuto, Payload{Now: fixedNow, Text: "٣٤٥"}))
}

func TestNameMethod(t *testing.T) {
	h := ComputeHexagram(MethodName, Payload{Text: "我叫小明"})
	assert.Equal(t, 96281, NameValue("我叫小明"))
	assert.Equal(t, "第12卦 震兑卦 变爻: 第5爻", h.String())

	// 只含符号的字符串同样得到确定的非负值
	assert.Equal(t, 132, NameValue("!@#"))
	assert.Equal(t, "第33卦 艮坤卦 变爻: 第3爻", ComputeHexagram(MethodName, Payload{Text: "!@#"}).String())

	// 组合字符只计首个码点
	assert.Equal(t, 101, NameValue("e\u0301"))
}

func TestEmptyInputs(t *testing.T) {
	for _, m := range []Method{MethodNumber, MethodName} {
		h := ComputeHexagram(m, Payload{})
		assert.Equal(t, Trigram(0), h.Upper)
		assert.Equal(t, Trigram(0), h.Lower)
		assert.Equal(t, 1, h.ChangingLine)
		assert.Equal(t, 1, h.Ordinal())
		assert.Equal(t, "第1卦 坤坤卦 变爻: 第1爻", h.String())
	}
}

func TestRanges(t *testing.T) {
	for sum := 0; sum < 5000; sum++ {
		h := FromSum(sum)
		require.GreaterOrEqual(t, h.Ordinal(), 1)
		require.LessOrEqual(t, h.Ordinal(), 64)
		require.GreaterOrEqual(t, h.ChangingLine, 1)
		require.LessOrEqual(t, h.ChangingLine, 6)
	}

	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for s := 0; s < 86400; s += 13 {
		h := FromTime(day.Add(time.Duration(s) * time.Second))
		require.GreaterOrEqual(t, h.Ordinal(), 1)
		require.LessOrEqual(t, h.Ordinal(), 64)
		require.GreaterOrEqual(t, h.ChangingLine, 1)
		require.LessOrEqual(t, h.ChangingLine, 6)
	}
}

func TestAutoMethod(t *testing.T) {
	assert.Equal(t, ComputeHexagram(MethodNumber, Payload{Text: "2468"}),
		ComputeHexagram(MethodAuto, Payload{Now: fixedNow, Text: "2468"}))
	assert.Equal(t, ComputeHexagram(MethodName, Payload{Text: "我是张三"}),
		ComputeHexagram(MethodAuto, Payload{Now: fixedNow, Text: "我是张三"}))
	assert.Equal(t, FromTime(fixedNow),
		ComputeHexagram(MethodAuto, Payload{Now: fixedNow, Text: "今天运势如何"}))
}

func TestDeterministic(t *testing.T) {
	p := Payload{Now: fixedNow, Text: "随便问点事"}
	for _, m := range []Method{MethodAuto, MethodTime, MethodNumber, MethodName} {
		assert.Equal(t, ComputeHexagram(m, p).String(), ComputeHexagram(m, p).String())
	}
}
