package meihua

import (
	"strings"
	"unicode"
)

// Method 起卦方法
type Method string

const (
	MethodAuto   Method = "auto"
	MethodTime   Method = "time"
	MethodNumber Method = "number"
	MethodName   Method = "name"
)

// Label 中文名称
func (m Method) Label() string {
	switch m {
	case MethodTime:
		return "时间起卦"
	case MethodNumber:
		return "数字起卦"
	case MethodName:
		return "姓名起卦"
	default:
		return "自动选择"
	}
}

// ParseMethod 支持英文标识与中文名称，空串视为自动
func ParseMethod(s string) (Method, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "automatic", "自动选择", "自动":
		return MethodAuto, true
	case "time", "时间起卦", "时间":
		return MethodTime, true
	case "number", "数字起卦", "数字":
		return MethodNumber, true
	case "name", "姓名起卦", "姓名":
		return MethodName, true
	}
	return "", false
}

var nameKeywords = []string{"我叫", "名字", "姓名", "我是"}

// SelectMethod 根据输入推断起卦方法
func SelectMethod(input string) Method {
	if input == "" {
		return MethodTime
	}
	if isAllNumeric(input) {
		return MethodNumber
	}
	for _, kw := range nameKeywords {
		if strings.Contains(input, kw) {
			return MethodName
		}
	}
	return MethodTime
}

// Resolve 自动方法解析为具体方法，其余原样返回
func Resolve(m Method, input string) Method {
	switch m {
	case MethodTime, MethodNumber, MethodName:
		return m
	default:
		return SelectMethod(input)
	}
}

// isAllNumeric 全部为十进制数字（Nd），与 DigitSum 计入的字符一致
func isAllNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
