package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/TIANLI0/BlindSight/config"
	"github.com/stretchr/testify/require"
)

// encodePNG 生成指定尺寸的纯色 PNG
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func box(xmin, xmax, ymin, ymax float64) BoundingBox {
	return BoundingBox{XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax}
}

func testDetectionConfig() *config.DetectionConfig {
	return &config.Default().Detection
}

type fakeDetector struct {
	detections []Detection
	err        error
	calls      int
	frame      *Frame
	deadline   bool
}

func (f *fakeDetector) Detect(ctx context.Context, frame *Frame) ([]Detection, error) {
	f.calls++
	f.frame = frame
	_, f.deadline = ctx.Deadline()
	return f.detections, f.err
}

type blockingDetector struct{}

func (blockingDetector) Detect(ctx context.Context, _ *Frame) ([]Detection, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return nil, nil
	}
}

type fakeStore struct {
	data   map[string][]Detection
	getErr error
	setErr error
	sets   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]Detection)}
}

func (s *fakeStore) GetDetections(_ context.Context, digest string) ([]Detection, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.data[digest], nil
}

func (s *fakeStore) SetDetections(_ context.Context, digest string, detections []Detection) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[digest] = detections
	return nil
}

type fakeRecognizer struct {
	names []string
	err   error
}

func (f *fakeRecognizer) Recognize(context.Context, image.Image) ([]string, error) {
	return f.names, f.err
}

type fakeClassifier struct {
	classes []int
	err     error
}

func (f *fakeClassifier) Classify(context.Context, image.Image) ([]int, error) {
	return f.classes, f.err
}

type fakeSender struct {
	bodies []string
	err    error
}

func (f *fakeSender) Send(_ context.Context, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.bodies = append(f.bodies, body)
	return "SM123", nil
}
