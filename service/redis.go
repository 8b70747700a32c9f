package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/TIANLI0/BlindSight/config"
	"github.com/TIANLI0/BlindSight/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const detectionKeyPrefix = "detections:"

type RedisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisService(cfg *config.RedisConfig) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisService{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetDetections 从缓存获取检测结果
func (s *RedisService) GetDetections(ctx context.Context, digest string) ([]Detection, error) {
	data, err := s.client.Get(ctx, detectionKeyPrefix+digest).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	detections := []Detection{}
	if err := json.Unmarshal(data, &detections); err != nil {
		utils.Logger.Error("failed to unmarshal detections",
			zap.String("digest", digest), zap.Error(err))
		return nil, err
	}

	return detections, nil
}

// SetDetections 写入检测结果缓存
func (s *RedisService) SetDetections(ctx context.Context, digest string, detections []Detection) error {
	data, err := json.Marshal(detections)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, detectionKeyPrefix+digest, data, s.ttl).Err()
}

func (s *RedisService) Close() error {
	return s.client.Close()
}
