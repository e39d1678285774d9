package probability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var berlin = mustLoad("Europe/Berlin")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func TestIsPeak(t *testing.T) {
	assert.True(t, IsPeak(time.Date(2026, 3, 10, 8, 0, 0, 0, berlin), berlin))
	assert.True(t, IsPeak(time.Date(2026, 3, 10, 12, 30, 0, 0, berlin), berlin))
	assert.True(t, IsPeak(time.Date(2026, 3, 10, 19, 59, 0, 0, berlin), berlin))
	assert.False(t, IsPeak(time.Date(2026, 3, 10, 20, 0, 0, 0, berlin), berlin))
	assert.False(t, IsPeak(time.Date(2026, 3, 10, 3, 0, 0, 0, berlin), berlin))
	assert.False(t, IsPeak(time.Date(2026, 3, 10, 7, 59, 0, 0, berlin), berlin))
}

func TestScore_FreshSpot(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 100, Score(now, now, true))
	assert.Equal(t, 100, Score(now, now, false))
	// clock skew: spot reported "in the future" still reads 100
	assert.Equal(t, 100, Score(now.Add(time.Minute), now, true))
}

func TestScore_Bounds(t *testing.T) {
	now := time.Now()
	for minutes := 0; minutes <= 240; minutes += 7 {
		since := now.Add(-time.Duration(minutes) * time.Minute)
		for _, peak := range []bool{true, false} {
			s := Score(since, now, peak)
			assert.GreaterOrEqual(t, s, Floor, "minutes=%d peak=%v", minutes, peak)
			assert.LessOrEqual(t, s, 100, "minutes=%d peak=%v", minutes, peak)
		}
	}
}

func TestScore_MonotonicNonIncreasing(t *testing.T) {
	now := time.Now()
	for _, peak := range []bool{true, false} {
		prev := 101
		for minutes := 0; minutes <= 180; minutes++ {
			since := now.Add(-time.Duration(minutes) * time.Minute)
			s := Score(since, now, peak)
			assert.LessOrEqual(t, s, prev, "minutes=%d peak=%v", minutes, peak)
			prev = s
		}
	}
}

func TestScore_PeakDecaysFaster(t *testing.T) {
	now := time.Now()
	since := now.Add(-25 * time.Minute)
	assert.Less(t, Score(since, now, true), Score(since, now, false))
}

func TestScore_FloorPastLastBucket(t *testing.T) {
	now := time.Now()
	assert.Equal(t, Floor, Score(now.Add(-31*time.Minute), now, true))
	assert.Equal(t, Floor, Score(now.Add(-121*time.Minute), now, false))
	assert.Equal(t, Floor, Score(now.Add(-24*time.Hour), now, false))
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "veryHigh", Level(95))
	assert.Equal(t, "veryHigh", Level(90))
	assert.Equal(t, "high", Level(89))
	assert.Equal(t, "high", Level(70))
	assert.Equal(t, "medium", Level(69))
	assert.Equal(t, "medium", Level(50))
	assert.Equal(t, "low", Level(49))
	assert.Equal(t, "low", Level(30))
	assert.Equal(t, "veryLow", Level(29))
	assert.Equal(t, "veryLow", Level(Floor))
}
