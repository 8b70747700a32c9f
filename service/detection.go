package service

import (
	"context"
	"image"
)

// BoundingBox 检测框，缩放后画面内的像素坐标
type BoundingBox struct {
	XMin float64 `json:"xmin"`
	XMax float64 `json:"xmax"`
	YMin float64 `json:"ymin"`
	YMax float64 `json:"ymax"`
}

func (b BoundingBox) CenterX() float64 { return (b.XMin + b.XMax) / 2 }

func (b BoundingBox) CenterY() float64 { return (b.YMin + b.YMax) / 2 }

func (b BoundingBox) Area() float64 { return (b.XMax - b.XMin) * (b.YMax - b.YMin) }

// Detection 单个识别到的目标
type Detection struct {
	Label string      `json:"name"`
	Box   BoundingBox `json:"box"`
	Score float64     `json:"confidence"`
}

// Frame 缩放到固定尺寸的画面
type Frame struct {
	Image  image.Image
	Size   int
	Digest string // 原始图片的MD5，用作缓存键
}

// DetectionProvider 目标检测模型
type DetectionProvider interface {
	Detect(ctx context.Context, frame *Frame) ([]Detection, error)
}

// FaceRecognizer 人脸识别模型，返回每张脸对应的人名
type FaceRecognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]string, error)
}

// CurrencyClassifier 纸币分类模型，返回识别出的类别号
type CurrencyClassifier interface {
	Classify(ctx context.Context, img image.Image) ([]int, error)
}

// SMSSender 短信通道，返回消息ID
type SMSSender interface {
	Send(ctx context.Context, body string) (string, error)
}
