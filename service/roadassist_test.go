package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadAssistService_Describe(t *testing.T) {
	detector := &fakeDetector{detections: []Detection{
		{Label: "car", Box: box(0, 100, 0, 100), Score: 0.9},
		{Label: "chair", Box: box(250, 350, 0, 100), Score: 0.8},
		{Label: "person", Box: box(250, 350, 250, 350), Score: 0.7},
		{Label: "dog", Box: box(500, 600, 500, 600), Score: 0.6},
		{Label: "dog", Box: box(450, 590, 0, 100), Score: 0.5},
	}}
	svc := NewRoadAssistService(detector, testDetectionConfig())

	got, err := svc.Describe(context.Background(), encodePNG(t, 64, 48))
	require.NoError(t, err)

	assert.Equal(t, []string{"car to your left", "person in front of you", "dog to your right"}, got)
	assert.Equal(t, 1, detector.calls)
	assert.Equal(t, 600, detector.frame.Size)
	assert.Equal(t, 600, detector.frame.Image.Bounds().Dx())
	assert.True(t, detector.deadline)
}

func TestRoadAssistService_NoDetections(t *testing.T) {
	svc := NewRoadAssistService(&fakeDetector{}, testDetectionConfig())

	got, err := svc.Describe(context.Background(), encodePNG(t, 10, 10))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRoadAssistService_InvalidImage(t *testing.T) {
	detector := &fakeDetector{}
	svc := NewRoadAssistService(detector, testDetectionConfig())

	_, err := svc.Describe(context.Background(), []byte("garbage"))

	var invalid *InvalidInputError
	assert.True(t, errors.As(err, &invalid))
	assert.Zero(t, detector.calls)
}

func TestRoadAssistService_DetectorFailure(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewRoadAssistService(&fakeDetector{err: cause}, testDetectionConfig())

	_, err := svc.Describe(context.Background(), encodePNG(t, 10, 10))

	var upstream *UpstreamUnavailableError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "object detector", upstream.Provider)
	assert.ErrorIs(t, err, cause)
}

func TestRoadAssistService_Timeout(t *testing.T) {
	cfg := testDetectionConfig()
	cfg.RequestTimeout = 20 * time.Millisecond
	svc := NewRoadAssistService(blockingDetector{}, cfg)

	_, err := svc.Describe(context.Background(), encodePNG(t, 10, 10))

	var upstream *UpstreamUnavailableError
	assert.True(t, errors.As(err, &upstream))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRoadAssistService_AllowListFromConfig(t *testing.T) {
	cfg := testDetectionConfig()
	cfg.AllowList = []string{"chair"}
	svc := NewRoadAssistService(&fakeDetector{}, cfg)

	got := svc.DescribeDetections([]Detection{
		{Label: "car", Box: box(0, 100, 0, 100)},
		{Label: "chair", Box: box(250, 350, 0, 100)},
	})
	assert.Equal(t, []string{"chair in front of you"}, got)
}

func TestRoadAssistService_FrameSizeFromConfig(t *testing.T) {
	cfg := testDetectionConfig()
	cfg.FrameSize = 900
	svc := NewRoadAssistService(&fakeDetector{}, cfg)

	got := svc.DescribeDetections([]Detection{
		{Label: "car", Box: box(200, 300, 0, 100)},
		{Label: "bus", Box: box(550, 650, 0, 100)},
	})
	assert.Equal(t, []string{"car to your left", "bus in front of you"}, got)
}
