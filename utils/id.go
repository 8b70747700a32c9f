package utils

import "github.com/google/uuid"

// NewRequestID 生成请求ID
func NewRequestID() string {
	return uuid.NewString()
}
