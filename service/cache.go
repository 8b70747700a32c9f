package service

import (
	"context"

	"github.com/TIANLI0/BlindSight/utils"
	"go.uber.org/zap"
)

// DetectionStore 检测结果缓存，未命中时返回 nil, nil
type DetectionStore interface {
	GetDetections(ctx context.Context, digest string) ([]Detection, error)
	SetDetections(ctx context.Context, digest string, detections []Detection) error
}

// CachedDetector 同一张图片重复上传时复用模型输出。缓存故障只记录日志。
type CachedDetector struct {
	next  DetectionProvider
	store DetectionStore
}

func NewCachedDetector(next DetectionProvider, store DetectionStore) *CachedDetector {
	return &CachedDetector{next: next, store: store}
}

func (c *CachedDetector) Detect(ctx context.Context, frame *Frame) ([]Detection, error) {
	if frame.Digest == "" {
		return c.next.Detect(ctx, frame)
	}

	cached, err := c.store.GetDetections(ctx, frame.Digest)
	if err != nil {
		utils.Logger.Warn("failed to get cache", zap.Error(err))
	}
	if cached != nil {
		utils.Logger.Debug("cache hit", zap.String("digest", frame.Digest))
		return cached, nil
	}

	detections, err := c.next.Detect(ctx, frame)
	if err != nil {
		return nil, err
	}

	if detections == nil {
		detections = []Detection{}
	}
	if err := c.store.SetDetections(ctx, frame.Digest, detections); err != nil {
		utils.Logger.Warn("failed to set cache", zap.Error(err))
	}

	return detections, nil
}
