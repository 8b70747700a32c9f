package service

// SceneDescriber 把检测结果转换成去重后的短语列表
type SceneDescriber struct {
	zones   ZoneClassifier
	minArea float64
}

func NewSceneDescriber(zones ZoneClassifier, minArea float64) *SceneDescriber {
	return &SceneDescriber{zones: zones, minArea: minArea}
}

// Describe 按检测顺序输出短语；面积不超过 minArea 的目标和重复短语被丢弃
func (d *SceneDescriber) Describe(detections []Detection) []string {
	phrases := make([]string, 0, len(detections))
	seen := make(map[string]struct{}, len(detections))

	for _, det := range detections {
		if det.Box.Area() <= d.minArea {
			continue
		}

		phrase := FormatPhrase(det.Label, d.zones.Classify(det.Box.CenterX()))
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		phrases = append(phrases, phrase)
	}

	return phrases
}
