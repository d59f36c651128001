package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoints(t *testing.T) {
	tests := []struct {
		name         string
		messages     int
		voiceMinutes int
		want         float64
	}{
		{name: "single message", messages: 1, want: 0.1},
		{name: "single voice minute", voiceMinutes: 1, want: 0.05},
		{name: "mixed", messages: 10, voiceMinutes: 20, want: 2.0},
		{name: "nothing", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Points(tt.messages, tt.voiceMinutes), 1e-9)
		})
	}
}

func TestXP(t *testing.T) {
	assert.Equal(t, 5, XP(1, 0))
	assert.Equal(t, 1, XP(0, 1))
	assert.Equal(t, 57, XP(10, 7))
}

// Splitting an increment into pieces earns the same points as applying it
// at once.
func TestPointsAdditivity(t *testing.T) {
	total := Points(25, 40)

	var sum float64
	for i := 0; i < 25; i++ {
		sum += Points(1, 0)
	}
	for i := 0; i < 40; i++ {
		sum += Points(0, 1)
	}

	assert.InDelta(t, total, sum, 1e-9)
}

func TestCurrencyAward(t *testing.T) {
	const cap = 50.0

	tests := []struct {
		name   string
		earned float64
		daySum float64
		want   float64
	}{
		{name: "well under cap", earned: 0.1, daySum: 0.1, want: 0.1},
		{name: "room left after update", earned: 1, daySum: 40, want: 1},
		{name: "clipped to post-update headroom", earned: 0.4, daySum: 49.9, want: 0.1},
		{name: "day sum exactly at cap", earned: 0.5, daySum: 50, want: 0},
		{name: "day sum over cap", earned: 0.1, daySum: 50.05, want: 0},
		{name: "far over cap", earned: 10, daySum: 300, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CurrencyAward(tt.earned, tt.daySum, cap), 1e-9)
		})
	}
}

// A day of 600 message-equivalent points pays out at most the cap in
// currency, no matter how the increments are sliced.
func TestCurrencyAwardDailyCapSequence(t *testing.T) {
	const cap = 50.0

	var daySum, balance float64
	for i := 0; i < 6000; i++ {
		earned := Points(1, 0)
		daySum += earned
		balance += CurrencyAward(earned, daySum, cap)
	}

	assert.InDelta(t, 600.0, daySum, 1e-6, "activity points stay uncapped")
	assert.LessOrEqual(t, balance, cap)
	assert.InDelta(t, cap, balance, 0.2, "payout approaches the cap before clipping")
}

func TestNextStreak(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, time.March, d, 12, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		last    time.Time
		hasLast bool
		prev    int
		today   time.Time
		want    int
	}{
		{name: "first ever activity", today: day(1), want: 1},
		{name: "consecutive day", last: day(1), hasLast: true, prev: 1, today: day(2), want: 2},
		{name: "long run continues", last: day(9), hasLast: true, prev: 14, today: day(10), want: 15},
		{name: "one day gap resets", last: day(1), hasLast: true, prev: 5, today: day(3), want: 1},
		{name: "long gap resets", last: day(1), hasLast: true, prev: 30, today: day(25), want: 1},
		{name: "same day unchanged", last: day(2), hasLast: true, prev: 3, today: day(2), want: 3},
		{
			name:    "month boundary counts as consecutive",
			last:    time.Date(2025, time.March, 31, 23, 50, 0, 0, time.UTC),
			hasLast: true,
			prev:    4,
			today:   time.Date(2025, time.April, 1, 0, 5, 0, 0, time.UTC),
			want:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStreak(tt.last, tt.hasLast, tt.prev, tt.today))
		})
	}
}

// Consecutive days strictly increase the streak by one per day.
func TestNextStreakConsecutiveRun(t *testing.T) {
	start := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

	streak := NextStreak(time.Time{}, false, 0, start)
	assert.Equal(t, 1, streak)

	for i := 1; i < 10; i++ {
		today := start.AddDate(0, 0, i)
		streak = NextStreak(start.AddDate(0, 0, i-1), true, streak, today)
		assert.Equal(t, i+1, streak)
	}
}
