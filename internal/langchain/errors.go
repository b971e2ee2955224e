package langchain

import (
	"errors"
	"fmt"
)

// Kind 解读失败的分类
type Kind string

const (
	KindCredentialMissing    Kind = "credential_missing"
	KindNetworkFailure       Kind = "network_failure"
	KindResponseParseFailure Kind = "response_parse_failure"
)

// Error 解读服务边界上的错误，不做重试
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is 只比较 Kind，便于 errors.Is(err, ErrNetworkFailure)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrCredentialMissing    = &Error{Kind: KindCredentialMissing}
	ErrNetworkFailure       = &Error{Kind: KindNetworkFailure}
	ErrResponseParseFailure = &Error{Kind: KindResponseParseFailure}
)

func networkError(format string, args ...any) error {
	return &Error{Kind: KindNetworkFailure, Err: fmt.Errorf(format, args...)}
}

func parseError(format string, args ...any) error {
	return &Error{Kind: KindResponseParseFailure, Err: fmt.Errorf(format, args...)}
}

// KindOf 取出错误分类，非解读错误返回空串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// UserMessage 面向用户的提示文案
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if KindOf(err) == KindCredentialMissing {
		return "请先设置DeepSeek API Key"
	}
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return "获取解释失败: " + e.Err.Error()
	}
	return "获取解释失败: " + err.Error()
}
