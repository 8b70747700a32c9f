package service

// LabelSet 允许播报的目标类别
type LabelSet map[string]struct{}

func NewLabelSet(labels []string) LabelSet {
	set := make(LabelSet, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return set
}

func (s LabelSet) Contains(label string) bool {
	_, ok := s[label]
	return ok
}

// Filter 保留类别在集合内的检测结果，顺序不变
func (s LabelSet) Filter(detections []Detection) []Detection {
	kept := make([]Detection, 0, len(detections))
	for _, det := range detections {
		if s.Contains(det.Label) {
			kept = append(kept, det)
		}
	}
	return kept
}
