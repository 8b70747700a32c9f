package service

import (
	"errors"
	"fmt"
)

// ErrNoImage 请求中没有图片数据
var ErrNoImage = errors.New("no image data provided")

// InvalidInputError 图片无法解码或超出限制，不重试
type InvalidInputError struct {
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Reason, e.Err)
	}
	return "invalid input: " + e.Reason
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// UpstreamUnavailableError 模型或短信服务调用失败/超时
type UpstreamUnavailableError struct {
	Provider string
	Err      error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Provider, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

func invalidInput(reason string, err error) error {
	return &InvalidInputError{Reason: reason, Err: err}
}

func upstreamUnavailable(provider string, err error) error {
	return &UpstreamUnavailableError{Provider: provider, Err: err}
}
