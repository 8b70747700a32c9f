package dnn

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/TIANLI0/BlindSight/config"
	"github.com/TIANLI0/BlindSight/utils"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// CurrencyClassifier 纸币面额分类网络（ONNX），一次识别一张纸币
type CurrencyClassifier struct {
	pool          *netPool
	inputSize     int
	minConfidence float64
}

func NewCurrencyClassifier(cfg *config.CurrencyConfig, maxConcurrent int) (*CurrencyClassifier, error) {
	pool, err := newNetPool(cfg.ModelPath, "", maxConcurrent, 0)
	if err != nil {
		return nil, err
	}

	utils.Logger.Info("currency network initialized", zap.String("model", cfg.ModelPath))

	return &CurrencyClassifier{
		pool:          pool,
		inputSize:     cfg.InputSize,
		minConfidence: cfg.MinConfidence,
	}, nil
}

// Classify 置信度不足时返回空结果
func (c *CurrencyClassifier) Classify(ctx context.Context, img image.Image) ([]int, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(c.inputSize, c.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	net, err := c.pool.acquire(ctx)
	if err != nil {
		return nil, err
	}
	net.SetInput(blob, "")
	output := net.Forward("")
	c.pool.release(net)
	defer output.Close()

	scores := make([]float64, output.Total())
	for i := range scores {
		scores[i] = float64(output.GetFloatAt(0, i))
	}

	if !isDistribution(scores) {
		scores = softmax(scores)
	}
	class, confidence := argmax(scores)
	utils.Logger.Debug("currency classified",
		zap.Int("class", class),
		zap.Float64("confidence", confidence))

	if class < 0 || confidence < c.minConfidence {
		return []int{}, nil
	}
	return []int{class}, nil
}

func (c *CurrencyClassifier) Close() error {
	return c.pool.Close()
}

func softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return scores
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		maxScore = math.Max(maxScore, s)
	}

	var sum float64
	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// isDistribution 网络末层已带 softmax 时不再重复归一化
func isDistribution(scores []float64) bool {
	var sum float64
	for _, s := range scores {
		if s < 0 || s > 1 {
			return false
		}
		sum += s
	}
	return math.Abs(sum-1) < 1e-3
}

func argmax(values []float64) (int, float64) {
	best, bestValue := -1, math.Inf(-1)
	for i, v := range values {
		if v > bestValue {
			best, bestValue = i, v
		}
	}
	return best, bestValue
}
