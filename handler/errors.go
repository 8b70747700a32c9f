package handler

import (
	"errors"
	"net/http"

	"github.com/TIANLI0/BlindSight/model"
	"github.com/TIANLI0/BlindSight/service"
	"github.com/gin-gonic/gin"
)

// statusFor 把服务层错误映射为 HTTP 状态码和提示语
func statusFor(err error) (int, string) {
	var invalid *service.InvalidInputError
	var upstream *service.UpstreamUnavailableError

	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, "图片无效，请重新拍摄"
	case errors.As(err, &upstream):
		return http.StatusServiceUnavailable, "识别服务暂不可用，请稍后重试"
	default:
		return http.StatusInternalServerError, "处理失败"
	}
}

func respondError(c *gin.Context, err error) {
	status, message := statusFor(err)
	c.JSON(status, model.ErrorResponse{
		Success: false,
		Message: message,
		Error:   err.Error(),
	})
}
