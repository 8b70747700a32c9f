package service

// Zone 画面横向分区
type Zone string

const (
	ZoneLeft  Zone = "left"
	ZoneFront Zone = "front"
	ZoneRight Zone = "right"
)

// ZoneClassifier 按中心点横坐标把目标划入左/前/右三个区域
type ZoneClassifier struct {
	Left  float64 // 小于 Left 为左侧
	Right float64 // 大于 Right 为右侧
}

// NewZoneClassifier 将画面宽度三等分
func NewZoneClassifier(frameWidth int) ZoneClassifier {
	w := float64(frameWidth)
	return ZoneClassifier{Left: w / 3, Right: 2 * w / 3}
}

func (c ZoneClassifier) Classify(centerX float64) Zone {
	switch {
	case centerX < c.Left:
		return ZoneLeft
	case centerX <= c.Right:
		return ZoneFront
	default:
		return ZoneRight
	}
}
