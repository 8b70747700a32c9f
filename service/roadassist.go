package service

import (
	"context"
	"errors"
	"time"

	"github.com/TIANLI0/BlindSight/config"
	"github.com/TIANLI0/BlindSight/utils"
	"go.uber.org/zap"
)

// RoadAssistService 路况辅助：检测画面中的目标并描述其方位
type RoadAssistService struct {
	detector       DetectionProvider
	allowed        LabelSet
	describer      *SceneDescriber
	frameSize      int
	requestTimeout time.Duration
}

func NewRoadAssistService(detector DetectionProvider, cfg *config.DetectionConfig) *RoadAssistService {
	return &RoadAssistService{
		detector:       detector,
		allowed:        NewLabelSet(cfg.AllowList),
		describer:      NewSceneDescriber(NewZoneClassifier(cfg.FrameSize), cfg.MinArea),
		frameSize:      cfg.FrameSize,
		requestTimeout: cfg.RequestTimeout,
	}
}

// Describe 处理一张图片，返回按检测顺序排列的方位短语
func (s *RoadAssistService) Describe(ctx context.Context, raw []byte) ([]string, error) {
	frame, err := NewFrame(raw, s.frameSize)
	if err != nil {
		return nil, err
	}

	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	start := time.Now()
	detections, err := s.detector.Detect(ctx, frame)
	if err != nil {
		var invalid *InvalidInputError
		if errors.As(err, &invalid) {
			return nil, err
		}
		utils.Logger.Error("object detection failed", zap.Error(err))
		return nil, upstreamUnavailable("object detector", err)
	}

	phrases := s.DescribeDetections(detections)

	utils.Logger.Debug("road scene described",
		zap.String("digest", frame.Digest),
		zap.Int("detections", len(detections)),
		zap.Strings("phrases", phrases),
		zap.Duration("cost", time.Since(start)))

	return phrases, nil
}

// DescribeDetections 对模型原始输出做类别过滤和方位描述
func (s *RoadAssistService) DescribeDetections(detections []Detection) []string {
	return s.describer.Describe(s.allowed.Filter(detections))
}
