package models

import "math"

// Progress is sent to listeners whenever the transport reports newly transferred bytes
type Progress struct {
	FileId     int
	Index      int
	Name       string
	BytesSent  int64
	TotalBytes int64
	Percent    int
}

// CalculatePercent returns the rounded percentage of sent in relation to total, within 0 and 100
func CalculatePercent(sent, total int64) int {
	if total <= 0 || sent <= 0 {
		return 0
	}
	if sent >= total {
		return 100
	}
	return int(math.Round(float64(sent) * 100 / float64(total)))
}
