package logging

import (
	"fmt"
	"math"
	"time"
)

const logTimestampLayout = "2006-01-02 15:04:05"

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(logTimestampLayout)
}

// FormatMediaOffset renders a position inside a video as HH:MM:SS.mmm.
// Negative and non-finite offsets render as zero.
func FormatMediaOffset(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	millis := int64(math.Round(seconds * 1000))
	return fmt.Sprintf("%02d:%02d:%02d.%03d",
		millis/3_600_000, (millis/60_000)%60, (millis/1000)%60, millis%1000)
}

// MediaOffset attaches a video position to a log record.
func MediaOffset(key string, seconds float64) Attr {
	return String(key, FormatMediaOffset(seconds))
}
