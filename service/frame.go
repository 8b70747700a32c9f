package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/TIANLI0/BlindSight/utils"
	"github.com/disintegration/imaging"
)

// placeholderPayload Swagger 表单的默认值，客户端未拍照时会原样发送
const placeholderPayload = "string"

// DecodePayload 解析 base64 图片数据，支持 data URL 前缀。
// 空数据或占位值返回 ErrNoImage。
func DecodePayload(encoded string, maxSize int64) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" || encoded == placeholderPayload {
		return nil, ErrNoImage
	}

	if strings.HasPrefix(encoded, "data:") {
		if i := strings.IndexByte(encoded, ','); i >= 0 {
			encoded = encoded[i+1:]
		}
	}

	if maxSize > 0 && int64(base64.StdEncoding.DecodedLen(len(encoded))) > maxSize+2 {
		return nil, invalidInput(fmt.Sprintf("image exceeds %d bytes", maxSize), nil)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, invalidInput("malformed base64", err)
	}
	if maxSize > 0 && int64(len(raw)) > maxSize {
		return nil, invalidInput(fmt.Sprintf("image exceeds %d bytes", maxSize), nil)
	}

	return raw, nil
}

// DecodeImage 解码图片并按 EXIF 方向摆正
func DecodeImage(raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, invalidInput("empty image", nil)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, invalidInput("undecodable image", err)
	}
	return img, nil
}

// NewFrame 解码图片并缩放到 size×size
func NewFrame(raw []byte, size int) (*Frame, error) {
	img, err := DecodeImage(raw)
	if err != nil {
		return nil, err
	}

	return &Frame{
		Image:  imaging.Resize(img, size, size, imaging.Lanczos),
		Size:   size,
		Digest: fmt.Sprintf("%s:%d", utils.BytesMD5(raw), size),
	}, nil
}
