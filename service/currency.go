package service

import (
	"context"

	"github.com/TIANLI0/BlindSight/utils"
	"go.uber.org/zap"
)

// UnrecognizedNote 无法识别纸币时的提示
const UnrecognizedNote = "This note cannot be recognized. Please hold it correctly."

type CurrencyService struct {
	classifier CurrencyClassifier
	labels     []string
}

// NewCurrencyService labels 下标对应分类模型的类别号，如 "Ten Rupees"
func NewCurrencyService(classifier CurrencyClassifier, labels []string) *CurrencyService {
	return &CurrencyService{classifier: classifier, labels: labels}
}

// Classify 每张识别出的纸币一条短语；没有识别出纸币时返回空列表
func (s *CurrencyService) Classify(ctx context.Context, raw []byte) ([]string, error) {
	img, err := DecodeImage(raw)
	if err != nil {
		return nil, err
	}

	classes, err := s.classifier.Classify(ctx, img)
	if err != nil {
		utils.Logger.Error("currency classification failed", zap.Error(err))
		return nil, upstreamUnavailable("currency classifier", err)
	}

	phrases := make([]string, 0, len(classes))
	for _, class := range classes {
		phrases = append(phrases, s.phrase(class))
	}
	return phrases, nil
}

func (s *CurrencyService) phrase(class int) string {
	if class < 0 || class >= len(s.labels) {
		return UnrecognizedNote
	}
	return "This is a " + s.labels[class] + " note."
}
