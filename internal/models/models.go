package models

import "time"

// AccrualResult is what a single accrual event awarded
type AccrualResult struct {
	ActivityPoints float64
	XP             int
	Streak         int
}

// LeaderboardEntry is one ranked row of a guild leaderboard
type LeaderboardEntry struct {
	UserID string
	Streak int
	Points float64
}

// Profile aggregates one user's engagement state in a guild
type Profile struct {
	Points       float64
	Streak       int
	XP           int
	VoiceMinutes int64
}

// AchievementStatus is a catalog achievement with the caller's unlock state
type AchievementStatus struct {
	Name        string
	Description string
	XPReward    float64
	UnlockedAt  *time.Time
}

// Unlocked reports whether the achievement has been earned.
func (a AchievementStatus) Unlocked() bool {
	return a.UnlockedAt != nil
}

// RoleThreshold is a guild role granted once a user reaches the required points
type RoleThreshold struct {
	RoleID         string
	RequiredPoints float64
	RequiredLevel  int
}

// ShopItem is a purchasable catalog entry
type ShopItem struct {
	Name  string
	Price float64
}
