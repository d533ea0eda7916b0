package domain

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as zero-padded mm:ss.
// Fractions are truncated; negative and non-finite inputs render as 00:00.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
