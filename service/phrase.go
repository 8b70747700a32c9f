package service

// FormatPhrase 生成播报短语
func FormatPhrase(label string, zone Zone) string {
	if zone == ZoneFront {
		return label + " in front of you"
	}
	return label + " to your " + string(zone)
}
