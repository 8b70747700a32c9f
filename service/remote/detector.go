package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/TIANLI0/BlindSight/config"
	"github.com/TIANLI0/BlindSight/service"
)

// Detector 通过 HTTP 调用外部推理服务（YOLO 等）
type Detector struct {
	inferenceURL  string
	healthURL     string
	minConfidence float64
	client        *http.Client
}

func NewDetector(cfg *config.DetectionConfig) *Detector {
	return &Detector{
		inferenceURL:  cfg.InferenceURL,
		healthURL:     healthURL(cfg),
		minConfidence: cfg.MinConfidence,
		client:        &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// record 推理服务返回的单条结果，字段与 pandas xyxy 记录一致
type record struct {
	XMin       float64 `json:"xmin"`
	YMin       float64 `json:"ymin"`
	XMax       float64 `json:"xmax"`
	YMax       float64 `json:"ymax"`
	Confidence float64 `json:"confidence"`
	Name       string  `json:"name"`
}

// Detect 上传缩放后的画面，返回画面坐标系下的检测结果
func (d *Detector) Detect(ctx context.Context, frame *service.Frame) ([]service.Detection, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := jpeg.Encode(part, frame.Image, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	if err := writer.WriteField("size", strconv.Itoa(frame.Size)); err != nil {
		return nil, fmt.Errorf("write size field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.inferenceURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	records, err := decodeRecords(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	detections := make([]service.Detection, 0, len(records))
	for _, r := range records {
		if r.Confidence < d.minConfidence {
			continue
		}
		detections = append(detections, service.Detection{
			Label: r.Name,
			Box:   service.BoundingBox{XMin: r.XMin, XMax: r.XMax, YMin: r.YMin, YMax: r.YMax},
			Score: r.Confidence,
		})
	}
	return detections, nil
}

// decodeRecords 兼容裸数组和 {"detections": [...]} 两种格式
func decodeRecords(r io.Reader) ([]record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []record
		err := json.Unmarshal(trimmed, &records)
		return records, err
	}

	var wrapped struct {
		Detections []record `json:"detections"`
	}
	err = json.Unmarshal(trimmed, &wrapped)
	return wrapped.Detections, err
}

// CheckHealth 检查推理服务是否可用
func (d *Detector) CheckHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.healthURL, nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ml service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

// healthURL 未配置时取推理接口同目录下的 /health，例如 /v1/predict -> /v1/health
func healthURL(cfg *config.DetectionConfig) string {
	if cfg.HealthURL != "" {
		return cfg.HealthURL
	}

	u, err := url.Parse(cfg.InferenceURL)
	if err != nil {
		return cfg.InferenceURL
	}
	u.Path = path.Join("/", path.Dir(u.Path), "health")
	u.RawPath = ""
	u.RawQuery = ""
	return u.String()
}
