package dnn

import (
	"context"
	"fmt"
	"image"

	"github.com/TIANLI0/BlindSight/config"
	"github.com/TIANLI0/BlindSight/service"
	"github.com/TIANLI0/BlindSight/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// ssdInputSize SSD MobileNet 的输入尺寸
const ssdInputSize = 300

// Detector 基于 OpenCV DNN 的 SSD COCO 目标检测
type Detector struct {
	pool          *netPool
	minConfidence float32
}

func NewDetector(cfg *config.DetectionConfig) (*Detector, error) {
	pool, err := newNetPool(cfg.ModelPath, cfg.ConfigPath, cfg.MaxConcurrent, cfg.QueueTimeout)
	if err != nil {
		return nil, err
	}

	utils.Logger.Info("detection network initialized",
		zap.String("model", cfg.ModelPath),
		zap.Int("instances", cap(pool.nets)))

	return &Detector{
		pool:          pool,
		minConfidence: float32(cfg.MinConfidence),
	}, nil
}

// Detect 输出 [batch_id, class_id, confidence, x1, y1, x2, y2]，坐标按画面尺寸还原
func (d *Detector) Detect(ctx context.Context, frame *service.Frame) ([]service.Detection, error) {
	mat, err := gocv.ImageToMatRGB(frame.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(ssdInputSize, ssdInputSize), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	net, err := d.pool.acquire(ctx)
	if err != nil {
		return nil, err
	}
	net.SetInput(blob, "")
	output := net.Forward("")
	d.pool.release(net)
	defer output.Close()

	rows := output.Reshape(1, output.Total()/7)
	defer rows.Close()

	width := float64(mat.Cols())
	height := float64(mat.Rows())

	detections := make([]service.Detection, 0)
	for i := 0; i < rows.Rows(); i++ {
		confidence := rows.GetFloatAt(i, 2)
		if confidence < d.minConfidence {
			continue
		}

		detections = append(detections, service.Detection{
			Label: classLabel(int(rows.GetFloatAt(i, 1))),
			Box: service.BoundingBox{
				XMin: clamp(float64(rows.GetFloatAt(i, 3))) * width,
				YMin: clamp(float64(rows.GetFloatAt(i, 4))) * height,
				XMax: clamp(float64(rows.GetFloatAt(i, 5))) * width,
				YMax: clamp(float64(rows.GetFloatAt(i, 6))) * height,
			},
			Score: float64(confidence),
		})
	}

	return detections, nil
}

func (d *Detector) Close() error {
	return d.pool.Close()
}

// clamp SSD 偶尔输出略超出 [0,1] 的坐标
func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
