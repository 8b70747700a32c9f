package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/TIANLI0/BlindSight/config"
	"github.com/TIANLI0/BlindSight/model"
	"github.com/TIANLI0/BlindSight/service"
	"github.com/TIANLI0/BlindSight/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const streamWriteTimeout = 10 * time.Second

// StreamHandler 摄像头连续帧的路况描述，每一帧独立处理
type StreamHandler struct {
	cfg        *config.Config
	roadAssist *service.RoadAssistService
	upgrader   websocket.Upgrader
}

func NewStreamHandler(cfg *config.Config, roadAssist *service.RoadAssistService) *StreamHandler {
	return &StreamHandler{
		cfg:        cfg,
		roadAssist: roadAssist,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RoadAssist 每收到一个 {"imagedata": ...} 文本帧，回复一个短语数组
func (h *StreamHandler) RoadAssist(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(payloadLimit(h.cfg.Upload.MaxSize))
	utils.Logger.Info("stream opened", zap.String("ip", c.ClientIP()))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.Logger.Warn("stream read failed", zap.Error(err))
			}
			break
		}

		if err := writeReply(conn, h.describe(c, message)); err != nil {
			utils.Logger.Warn("stream write failed", zap.Error(err))
			break
		}
	}

	utils.Logger.Info("stream closed", zap.String("ip", c.ClientIP()))
}

func (h *StreamHandler) describe(c *gin.Context, message []byte) interface{} {
	var req model.ImageRequest
	if err := json.Unmarshal(message, &req); err != nil {
		return model.ErrorResponse{Success: false, Message: "请求格式错误", Error: err.Error()}
	}

	raw, err := service.DecodePayload(req.ImageData, h.cfg.Upload.MaxSize)
	if errors.Is(err, service.ErrNoImage) {
		return []string{}
	}
	if err == nil {
		var phrases []string
		phrases, err = h.roadAssist.Describe(c.Request.Context(), raw)
		if err == nil {
			return phrases
		}
	}

	_, msg := statusFor(err)
	return model.ErrorResponse{Success: false, Message: msg, Error: err.Error()}
}

// replyWriter *websocket.Conn 的写端
type replyWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v interface{}) error
}

func writeReply(w replyWriter, reply interface{}) error {
	if err := w.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return w.WriteJSON(reply)
}
