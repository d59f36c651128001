package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUserMention(t *testing.T) {
	assert.Equal(t, "<@123456>", FormatUserMention("123456"))
}

func TestFormatRank(t *testing.T) {
	tests := []struct {
		rank int
		want string
	}{
		{rank: 1, want: "🥇"},
		{rank: 2, want: "🥈"},
		{rank: 3, want: "🥉"},
		{rank: 4, want: "4."},
		{rank: 10, want: "10."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRank(tt.rank))
	}
}

func TestFormatLeaderboardEntry(t *testing.T) {
	got := FormatLeaderboardEntry("42", 7, 12.5)
	assert.Equal(t, "<@42> — Streak: 7 — Points: 12.50", got)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "exactly10!", TruncateString("exactly10!", 10))
	assert.Equal(t, "this is...", TruncateString("this is far too long", 10))
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int64
		want    string
	}{
		{minutes: 0, want: "0m"},
		{minutes: 45, want: "45m"},
		{minutes: 60, want: "1h 00m"},
		{minutes: 125, want: "2h 05m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinutes(tt.minutes))
	}
}
