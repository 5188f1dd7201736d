// Package errs 定义跨层共享的错误分类。
//
// Repository 把驱动错误翻译成这里的分类，Service 在此基础上声明业务错误，
// Handler 只按分类映射 HTTP 状态码。
package errs

import (
	"errors"
	"fmt"
)

// 错误分类
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
)

// Error 带分类的业务错误，Error() 只返回面向用户的消息
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Kind 返回错误分类
func (e *Error) Kind() error { return e.kind }

// New 创建一个属于 kind 分类的错误
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Newf 同 New，支持格式化
func Newf(kind error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Validation 创建参数校验错误
func Validation(msg string) *Error {
	return New(ErrValidation, msg)
}

// Wrap 把底层错误标记为 kind 分类，保留原始错误链
func Wrap(kind error, err error) error {
	if err == nil {
		return nil
	}
	return &wrapped{kind: kind, err: err}
}

type wrapped struct {
	kind error
	err  error
}

func (w *wrapped) Error() string { return w.kind.Error() + ": " + w.err.Error() }

func (w *wrapped) Unwrap() []error { return []error{w.kind, w.err} }

// KindOf 返回 err 所属分类，不属于任何分类时返回 nil
func KindOf(err error) error {
	for _, kind := range []error{
		ErrNotFound, ErrValidation, ErrForbidden, ErrConflict,
		ErrRateLimited, ErrUnauthorized, ErrUnavailable,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
