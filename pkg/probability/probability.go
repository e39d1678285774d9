// Package probability estimates how likely a reported parking spot is still
// free, decaying with the time since it became available. Purely a display
// aid; availability itself is decided by the claim compare-and-swap.
package probability

import (
	"math"
	"time"
)

type bucket struct {
	minMinutes float64
	maxMinutes float64
	minProb    int
	maxProb    int
}

// Turnover is much faster during the day, so the daytime curve decays in a
// third of the time.
var peakBuckets = []bucket{
	{0, 5, 90, 100},
	{5, 10, 70, 89},
	{10, 15, 50, 69},
	{15, 20, 30, 49},
	{20, 30, 10, 29},
}

var offBuckets = []bucket{
	{0, 15, 90, 100},
	{15, 30, 75, 89},
	{30, 60, 55, 74},
	{60, 90, 30, 54},
	{90, 120, 10, 29},
}

// Floor is the value past the last bucket: never claim zero, someone may
// still luck out.
const Floor = 5

// IsPeak reports whether t falls in the 08:00-20:00 window in loc.
func IsPeak(t time.Time, loc *time.Location) bool {
	hour := t.In(loc).Hour()
	return hour >= 8 && hour < 20
}

// Score returns the 0-100 confidence that a spot available since
// availableSince is still free at now. Monotonically non-increasing in
// elapsed time, bounded to [Floor, 100].
func Score(availableSince, now time.Time, peak bool) int {
	elapsed := now.Sub(availableSince).Minutes()
	if elapsed < 0 {
		return 100
	}
	buckets := offBuckets
	if peak {
		buckets = peakBuckets
	}
	if elapsed >= buckets[len(buckets)-1].maxMinutes {
		return Floor
	}
	for _, b := range buckets {
		if elapsed >= b.minMinutes && elapsed < b.maxMinutes {
			progress := (elapsed - b.minMinutes) / (b.maxMinutes - b.minMinutes)
			return int(math.Round(float64(b.maxProb) - progress*float64(b.maxProb-b.minProb)))
		}
	}
	return Floor
}

// Level buckets a score for display.
func Level(score int) string {
	switch {
	case score >= 90:
		return "veryHigh"
	case score >= 70:
		return "high"
	case score >= 50:
		return "medium"
	case score >= 30:
		return "low"
	default:
		return "veryLow"
	}
}
