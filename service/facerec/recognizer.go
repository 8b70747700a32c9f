package facerec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Kagami/go-face"
	"github.com/TIANLI0/BlindSight/config"
	"github.com/TIANLI0/BlindSight/utils"
	"go.uber.org/zap"
)

// UnknownPerson 未匹配到样本的人脸
const UnknownPerson = "an unknown person"

// Recognizer 基于 dlib 的人脸识别。样本目录中每张图片一个人，文件名即人名。
type Recognizer struct {
	mu        sync.Mutex
	rec       *face.Recognizer
	names     []string
	tolerance float32
}

func NewRecognizer(cfg *config.FaceConfig) (*Recognizer, error) {
	rec, err := face.NewRecognizer(cfg.ModelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load face models: %w", err)
	}

	r := &Recognizer{rec: rec, tolerance: cfg.Tolerance}
	if err := r.loadSamples(cfg.SamplesDir); err != nil {
		rec.Close()
		return nil, err
	}
	return r, nil
}

// loadSamples 读取 samples_dir/<name>.jpg，没有检测到人脸的图片跳过
func (r *Recognizer) loadSamples(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read samples dir: %w", err)
	}

	var samples []face.Descriptor
	var cats []int32
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".jpg" && ext != ".jpeg") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		f, err := r.rec.RecognizeSingleFile(path)
		if err != nil {
			utils.Logger.Warn("failed to read face sample", zap.String("file", path), zap.Error(err))
			continue
		}
		if f == nil {
			utils.Logger.Warn("no face in sample", zap.String("file", path))
			continue
		}

		samples = append(samples, f.Descriptor)
		cats = append(cats, int32(len(r.names)))
		r.names = append(r.names, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
	}

	r.rec.SetSamples(samples, cats)
	utils.Logger.Info("face samples loaded", zap.Strings("names", r.names))
	return nil
}

// Recognize 按检测顺序返回人名
func (r *Recognizer) Recognize(ctx context.Context, img image.Image) ([]string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	faces, err := r.rec.Recognize(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("recognize faces: %w", err)
	}

	names := make([]string, 0, len(faces))
	for _, f := range faces {
		id := r.rec.ClassifyThreshold(f.Descriptor, r.tolerance)
		if id < 0 || id >= len(r.names) {
			names = append(names, UnknownPerson)
			continue
		}
		names = append(names, r.names[id])
	}
	return names, nil
}

func (r *Recognizer) Close() {
	r.rec.Close()
}
