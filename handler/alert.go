package handler

import (
	"net/http"

	"github.com/TIANLI0/BlindSight/model"
	"github.com/TIANLI0/BlindSight/service"
	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	alert *service.AlertService
}

// NewAlertHandler alert 为 nil 时短信功能关闭
func NewAlertHandler(alert *service.AlertService) *AlertHandler {
	return &AlertHandler{alert: alert}
}

// SMSAlert 发送求助短信
func (h *AlertHandler) SMSAlert(c *gin.Context) {
	if h.alert == nil {
		disabled(c, "sms alert")
		return
	}

	var req model.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Message: "请求格式错误",
			Error:   err.Error(),
		})
		return
	}

	sid, err := h.alert.SendDistress(c.Request.Context(), service.Location{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.AlertResponse{
		Success: true,
		Message: "求助短信已发送",
		SID:     sid,
	})
}
