package service

import (
	"context"

	"github.com/TIANLI0/BlindSight/utils"
	"go.uber.org/zap"
)

type FaceService struct {
	recognizer FaceRecognizer
}

func NewFaceService(recognizer FaceRecognizer) *FaceService {
	return &FaceService{recognizer: recognizer}
}

// Recognize 对每张识别出的人脸生成 "This is {name}"
func (s *FaceService) Recognize(ctx context.Context, raw []byte) ([]string, error) {
	img, err := DecodeImage(raw)
	if err != nil {
		return nil, err
	}

	names, err := s.recognizer.Recognize(ctx, img)
	if err != nil {
		utils.Logger.Error("face recognition failed", zap.Error(err))
		return nil, upstreamUnavailable("face recognizer", err)
	}

	phrases := make([]string, 0, len(names))
	for _, name := range names {
		phrases = append(phrases, "This is "+name)
	}
	return phrases, nil
}
