package meihua

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectMethod(t *testing.T) {
	cases := []struct {
		input string
		want  Method
	}{
		{"", MethodTime},
		{"12345", MethodNumber},
		{"１２３", MethodNumber},
		{"我叫小明", MethodName},
		{"我的名字是李雷", MethodName},
		{"姓名：韩梅梅", MethodName},
		{"我是谁", MethodName},
		{"随便问点事", MethodTime},
		{"123abc", MethodTime},
		{"٣٤٥", MethodNumber},
		{"½", MethodTime},
		{"Ⅻ", MethodTime},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SelectMethod(c.input), "input %q", c.input)
	}
}

func TestParseMethod(t *testing.T) {
	cases := map[string]Method{
		"":       MethodAuto,
		"auto":   MethodAuto,
		"TIME":   MethodTime,
		"数字起卦":   MethodNumber,
		" name ": MethodName,
	}
	for in, want := range cases {
		got, ok := ParseMethod(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseMethod("dice")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, MethodName, Resolve(MethodName, "12345"))
	assert.Equal(t, MethodNumber, Resolve(MethodAuto, "12345"))
	assert.Equal(t, MethodTime, Resolve("", ""))
	assert.Equal(t, "数字起卦", MethodNumber.Label())
}
