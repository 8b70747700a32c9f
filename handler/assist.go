package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/TIANLI0/BlindSight/config"
	"github.com/TIANLI0/BlindSight/middleware"
	"github.com/TIANLI0/BlindSight/model"
	"github.com/TIANLI0/BlindSight/service"
	"github.com/TIANLI0/BlindSight/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AssistHandler 图片类接口：路况、人脸、纸币
type AssistHandler struct {
	cfg        *config.Config
	roadAssist *service.RoadAssistService
	face       *service.FaceService
	currency   *service.CurrencyService
}

// NewAssistHandler face 和 currency 可以为 nil，对应接口返回 503
func NewAssistHandler(cfg *config.Config, roadAssist *service.RoadAssistService, face *service.FaceService, currency *service.CurrencyService) *AssistHandler {
	return &AssistHandler{
		cfg:        cfg,
		roadAssist: roadAssist,
		face:       face,
		currency:   currency,
	}
}

// RoadAssist 描述画面中目标的方位
func (h *AssistHandler) RoadAssist(c *gin.Context) {
	h.handleImage(c, "roadassist", h.roadAssist.Describe)
}

// FaceRecognize 识别画面中的熟人
func (h *AssistHandler) FaceRecognize(c *gin.Context) {
	if h.face == nil {
		disabled(c, "face recognition")
		return
	}
	h.handleImage(c, "facerecognize", h.face.Recognize)
}

// Currency 识别纸币面额
func (h *AssistHandler) Currency(c *gin.Context) {
	if h.currency == nil {
		disabled(c, "currency classification")
		return
	}
	h.handleImage(c, "currency", h.currency.Classify)
}

type imageFunc func(ctx context.Context, raw []byte) ([]string, error)

func (h *AssistHandler) handleImage(c *gin.Context, endpoint string, fn imageFunc) {
	raw, err := h.readImage(c)
	if errors.Is(err, service.ErrNoImage) {
		c.JSON(http.StatusOK, []string{})
		return
	}
	if err != nil {
		utils.Logger.Warn("failed to read image",
			zap.String("endpoint", endpoint), zap.Error(err))
		respondError(c, err)
		return
	}

	phrases, err := fn(c.Request.Context(), raw)
	if err != nil {
		utils.Logger.Error("image request failed",
			zap.String("endpoint", endpoint),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err))
		respondError(c, err)
		return
	}

	utils.Logger.Info("image request served",
		zap.String("endpoint", endpoint),
		zap.String("md5", utils.BytesMD5(raw)),
		zap.Int("size", len(raw)),
		zap.Int("phrases", len(phrases)))

	c.JSON(http.StatusOK, phrases)
}

// readImage 支持 JSON {"imagedata": base64} 和 multipart 的 image 文件两种上传方式
func (h *AssistHandler) readImage(c *gin.Context) ([]byte, error) {
	if c.ContentType() == "multipart/form-data" {
		return h.readUpload(c)
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, payloadLimit(h.cfg.Upload.MaxSize))

	var req model.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &service.InvalidInputError{
				Reason: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			}
		}
		return nil, &service.InvalidInputError{Reason: "malformed request body", Err: err}
	}
	return service.DecodePayload(req.ImageData, h.cfg.Upload.MaxSize)
}

func (h *AssistHandler) readUpload(c *gin.Context) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, service.ErrNoImage
	}

	// 验证文件大小
	if h.cfg.Upload.MaxSize > 0 && file.Size > h.cfg.Upload.MaxSize {
		return nil, &service.InvalidInputError{
			Reason: fmt.Sprintf("image exceeds %d bytes", h.cfg.Upload.MaxSize),
		}
	}

	// 验证文件类型
	contentType := file.Header.Get("Content-Type")
	if !h.isAllowedType(contentType) {
		return nil, &service.InvalidInputError{Reason: "unsupported content type " + contentType}
	}

	f, err := file.Open()
	if err != nil {
		return nil, &service.InvalidInputError{Reason: "unreadable upload", Err: err}
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, &service.InvalidInputError{Reason: "unreadable upload", Err: err}
	}
	return raw, nil
}

// payloadLimit base64 膨胀约 4/3，再留出 JSON 外壳
func payloadLimit(maxSize int64) int64 {
	if maxSize <= 0 {
		return 32 << 20
	}
	return maxSize/3*4 + 4096
}

func (h *AssistHandler) isAllowedType(contentType string) bool {
	for _, allowed := range h.cfg.Upload.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

func disabled(c *gin.Context, feature string) {
	c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
		Success: false,
		Message: "该功能未启用",
		Error:   feature + " is disabled",
	})
}
