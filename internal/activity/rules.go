package activity

import "time"

// Accrual rates
const (
	PointsPerMessage     = 0.1
	PointsPerVoiceMinute = 0.05
	XPPerMessage         = 5
	XPPerVoiceMinute     = 1
)

// Points computes the activity points earned by an increment of
// messages and voice minutes.
func Points(messages, voiceMinutes int) float64 {
	return float64(messages)*PointsPerMessage + float64(voiceMinutes)*PointsPerVoiceMinute
}

// XP computes the experience earned by an increment of messages and
// voice minutes.
func XP(messages, voiceMinutes int) int {
	return messages*XPPerMessage + voiceMinutes*XPPerVoiceMinute
}

// CurrencyAward returns how much currency an accrual event is worth, given
// the points it earned, the day's points sum AFTER the event was applied,
// and the daily cap. The allowance is deliberately evaluated against the
// post-update sum: the event that crosses the cap boundary is clipped to
// the remainder, and once the day's sum exceeds the cap nothing is paid.
func CurrencyAward(earned, daySum, cap float64) float64 {
	if daySum > cap {
		return 0
	}
	allowed := cap - daySum
	if earned < allowed {
		allowed = earned
	}
	if allowed < 0 {
		return 0
	}
	return allowed
}

// NextStreak computes the streak after activity on day today, given the
// previous activity date and streak. The snapshot must be taken before
// last_activity_date is overwritten for the current event.
//
// No prior activity starts a streak at 1. A gap of exactly one calendar
// day extends it, a longer gap resets it, and repeat activity on the same
// day leaves it untouched.
func NextStreak(last time.Time, hasLast bool, prev int, today time.Time) int {
	if !hasLast {
		return 1
	}
	switch gap := daysBetween(last, today); {
	case gap == 1:
		return prev + 1
	case gap > 1:
		return 1
	default:
		return prev
	}
}

// daysBetween returns the number of calendar days from a to b in UTC.
func daysBetween(a, b time.Time) int {
	return int(midnightUTC(b).Sub(midnightUTC(a)).Hours() / 24)
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
