package utils

import "fmt"

// FormatUserMention formats a user ID as a Discord mention
func FormatUserMention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// FormatRank formats a leaderboard rank, with medals for the podium
func FormatRank(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

// FormatLeaderboardEntry formats one leaderboard row
func FormatLeaderboardEntry(userID string, streak int, points float64) string {
	return fmt.Sprintf("%s — Streak: %d — Points: %.2f", FormatUserMention(userID), streak, points)
}

// TruncateString truncates a string to max length and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
