package database

import (
	"database/sql"
	"fmt"
	"time"

	"playpal/internal/activity"
	"playpal/internal/models"
)

// Repository handles database operations
type Repository struct {
	db       *DB
	dailyCap float64
}

// NewRepository creates a new repository. dailyCap bounds how much currency
// a user may earn per calendar day.
func NewRepository(db *DB, dailyCap float64) *Repository {
	return &Repository{db: db, dailyCap: dailyCap}
}

// EnsureGuild records a guild the bot can see
func (r *Repository) EnsureGuild(guildID, name string) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO servers (server_id, name, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (server_id) DO NOTHING`,
		guildID, name)
	if err != nil {
		return fmt.Errorf("failed to ensure guild: %w", err)
	}
	return nil
}

// EnsureUser records a guild member
func (r *Repository) EnsureUser(userID, guildID string) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO users (user_id, server_id, join_date)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, server_id) DO NOTHING`,
		userID, guildID)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// Accrue applies an increment of messages and voice minutes for a user.
// It updates the all-time and per-day counters, pays out daily-capped
// currency, and recomputes the streak from a snapshot taken before any
// mutation. Everything happens in one transaction; a failure leaves no
// partial counters behind.
//
// Accrue is not idempotent: re-invoking with the same increment double
// counts, so callers must not resend an already-applied increment.
// Concurrent accrual for the same user and guild can exceed the daily cap;
// that race is accepted at this scale.
func (r *Repository) Accrue(userID, guildID string, msgInc, voiceMinInc int) (models.AccrualResult, error) {
	var result models.AccrualResult

	now := time.Now().UTC()
	today := now.Format("2006-01-02")

	points := activity.Points(msgInc, voiceMinInc)
	xp := activity.XP(msgInc, voiceMinInc)

	tx, err := r.db.conn.Begin()
	if err != nil {
		return result, fmt.Errorf("failed to begin accrual: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO users (user_id, server_id, join_date)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, server_id) DO NOTHING`,
		userID, guildID)
	if err != nil {
		return result, fmt.Errorf("failed to ensure user: %w", err)
	}

	// Snapshot the streak state before the totals upsert overwrites
	// last_activity_date for this event.
	var lastDate sql.NullTime
	var prevStreak int
	err = tx.QueryRow(`
		SELECT last_activity_date, streak FROM user_activity_totals
		WHERE user_id = $1 AND server_id = $2`,
		userID, guildID).Scan(&lastDate, &prevStreak)
	if err != nil && err != sql.ErrNoRows {
		return result, fmt.Errorf("failed to read streak state: %w", err)
	}
	streak := activity.NextStreak(lastDate.Time, lastDate.Valid, prevStreak, now)

	_, err = tx.Exec(`
		INSERT INTO user_activity_totals (user_id, server_id, messages, voice_minutes, points, xp, streak, last_activity_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, server_id) DO UPDATE SET
			messages = user_activity_totals.messages + EXCLUDED.messages,
			voice_minutes = user_activity_totals.voice_minutes + EXCLUDED.voice_minutes,
			points = user_activity_totals.points + EXCLUDED.points,
			xp = user_activity_totals.xp + EXCLUDED.xp,
			streak = EXCLUDED.streak,
			last_activity_date = EXCLUDED.last_activity_date`,
		userID, guildID, msgInc, voiceMinInc, points, xp, streak, today)
	if err != nil {
		return result, fmt.Errorf("failed to update activity totals: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO user_activity_daily (user_id, server_id, date, messages, voice_minutes, points, xp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, server_id, date) DO UPDATE SET
			messages = user_activity_daily.messages + EXCLUDED.messages,
			voice_minutes = user_activity_daily.voice_minutes + EXCLUDED.voice_minutes,
			points = user_activity_daily.points + EXCLUDED.points,
			xp = user_activity_daily.xp + EXCLUDED.xp`,
		userID, guildID, today, msgInc, voiceMinInc, points, xp)
	if err != nil {
		return result, fmt.Errorf("failed to update daily activity: %w", err)
	}

	// Capped currency payout, evaluated against the post-update daily sum
	var daySum float64
	err = tx.QueryRow(`
		SELECT COALESCE(SUM(points), 0)
		FROM user_activity_daily
		WHERE user_id = $1 AND server_id = $2 AND date = $3`,
		userID, guildID, today).Scan(&daySum)
	if err != nil {
		return result, fmt.Errorf("failed to read daily points: %w", err)
	}
	if award := activity.CurrencyAward(points, daySum, r.dailyCap); award > 0 {
		_, err = tx.Exec(`
			UPDATE users
			SET points = points + $1
			WHERE user_id = $2 AND server_id = $3`,
			award, userID, guildID)
		if err != nil {
			return result, fmt.Errorf("failed to award currency: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit accrual: %w", err)
	}

	result.ActivityPoints = points
	result.XP = xp
	result.Streak = streak
	return result, nil
}

// LogActivity appends an audit record for an accrual event
func (r *Repository) LogActivity(userID, guildID, activityType, context string, value float64) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO activity_logs (user_id, server_id, type, context, value)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, guildID, activityType, context, value)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

// Leaderboard returns the top guild members ranked by the given scope
// ("streak" or "points"), with the other metric as secondary.
func (r *Repository) Leaderboard(guildID, scope string, limit int) ([]models.LeaderboardEntry, error) {
	var query string
	switch scope {
	case "points":
		query = `
			SELECT u.user_id, COALESCE(t.streak, 0), u.points
			FROM users u
			LEFT JOIN user_activity_totals t
				ON u.user_id = t.user_id AND u.server_id = t.server_id
			WHERE u.server_id = $1
			ORDER BY u.points DESC
			LIMIT $2`
	default: // streak
		query = `
			SELECT t.user_id, t.streak, COALESCE(u.points, 0)
			FROM user_activity_totals t
			LEFT JOIN users u
				ON u.user_id = t.user_id AND u.server_id = t.server_id
			WHERE t.server_id = $1
			ORDER BY t.streak DESC
			LIMIT $2`
	}

	rows, err := r.db.conn.Query(query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Streak, &entry.Points); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Profile returns one user's balance, streak, XP and voice time
func (r *Repository) Profile(userID, guildID string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.conn.QueryRow(`
		SELECT u.points, COALESCE(t.streak, 0), COALESCE(t.xp, 0), COALESCE(t.voice_minutes, 0)
		FROM users u
		LEFT JOIN user_activity_totals t
			ON u.user_id = t.user_id AND u.server_id = t.server_id
		WHERE u.user_id = $1 AND u.server_id = $2`,
		userID, guildID).Scan(&profile.Points, &profile.Streak, &profile.XP, &profile.VoiceMinutes)
	if err != nil && err != sql.ErrNoRows {
		return profile, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// Achievements returns the full catalog with the user's unlock status
func (r *Repository) Achievements(userID, guildID string) ([]models.AchievementStatus, error) {
	rows, err := r.db.conn.Query(`
		SELECT a.name, a.description, a.xp_reward, ua.date_unlocked
		FROM achievements a
		LEFT JOIN user_achievements ua
			ON a.achievement_id = ua.achievement_id
			AND ua.user_id = $1
			AND ua.server_id = $2
		ORDER BY a.achievement_id`,
		userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get achievements: %w", err)
	}
	defer rows.Close()

	var achievements []models.AchievementStatus
	for rows.Next() {
		var a models.AchievementStatus
		var unlocked sql.NullTime
		if err := rows.Scan(&a.Name, &a.Description, &a.XPReward, &unlocked); err != nil {
			return nil, fmt.Errorf("failed to scan achievement row: %w", err)
		}
		if unlocked.Valid {
			t := unlocked.Time
			a.UnlockedAt = &t
		}
		achievements = append(achievements, a)
	}

	return achievements, rows.Err()
}

// RoleThresholds returns the guild's points-gated role configuration
func (r *Repository) RoleThresholds(guildID string) ([]models.RoleThreshold, error) {
	rows, err := r.db.conn.Query(`
		SELECT role_id, required_points, required_level
		FROM server_roles
		WHERE server_id = $1
		ORDER BY required_points`,
		guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get role thresholds: %w", err)
	}
	defer rows.Close()

	var thresholds []models.RoleThreshold
	for rows.Next() {
		var rt models.RoleThreshold
		if err := rows.Scan(&rt.RoleID, &rt.RequiredPoints, &rt.RequiredLevel); err != nil {
			return nil, fmt.Errorf("failed to scan role threshold row: %w", err)
		}
		thresholds = append(thresholds, rt)
	}

	return thresholds, rows.Err()
}
