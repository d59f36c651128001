package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection
func New(dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	// Initialize tables and run migrations
	if err := db.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := db.migrateSchema(); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := db.seedAchievements(); err != nil {
		return nil, fmt.Errorf("failed to seed achievements: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// createTables creates the necessary tables. All child tables cascade-delete
// with their server/user parent.
func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS servers (
			server_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT NOT NULL,
			server_id TEXT REFERENCES servers(server_id) ON DELETE CASCADE,
			join_date TIMESTAMP DEFAULT NOW(),
			warns INTEGER DEFAULT 0,
			level INTEGER DEFAULT 1,
			xp REAL DEFAULT 0,
			streak INTEGER DEFAULT 0,
			points REAL DEFAULT 0,
			PRIMARY KEY (user_id, server_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_activity_daily (
			user_id TEXT NOT NULL,
			server_id TEXT NOT NULL,
			date DATE NOT NULL,
			messages INTEGER DEFAULT 0,
			voice_minutes INTEGER DEFAULT 0,
			points REAL DEFAULT 0,
			xp REAL DEFAULT 0,
			PRIMARY KEY (user_id, server_id, date),
			FOREIGN KEY (user_id, server_id) REFERENCES users(user_id, server_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS user_activity_totals (
			user_id TEXT NOT NULL,
			server_id TEXT NOT NULL,
			messages INTEGER DEFAULT 0,
			voice_minutes INTEGER DEFAULT 0,
			points REAL DEFAULT 0,
			xp REAL DEFAULT 0,
			streak INTEGER DEFAULT 0,
			last_activity_date DATE,
			PRIMARY KEY (user_id, server_id),
			FOREIGN KEY (user_id, server_id) REFERENCES users(user_id, server_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS activity_logs (
			log_id SERIAL PRIMARY KEY,
			user_id TEXT,
			server_id TEXT,
			type TEXT,
			context TEXT,
			value REAL,
			created_at TIMESTAMP DEFAULT NOW(),
			FOREIGN KEY (user_id, server_id) REFERENCES users(user_id, server_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS user_warnings (
			warning_id SERIAL PRIMARY KEY,
			user_id TEXT,
			server_id TEXT,
			reason TEXT,
			moderator TEXT,
			created_at TIMESTAMP DEFAULT NOW(),
			FOREIGN KEY (user_id, server_id) REFERENCES users(user_id, server_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			achievement_id SERIAL PRIMARY KEY,
			name TEXT UNIQUE,
			description TEXT,
			xp_reward REAL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS user_achievements (
			user_id TEXT NOT NULL,
			server_id TEXT NOT NULL,
			achievement_id INT REFERENCES achievements(achievement_id) ON DELETE CASCADE,
			date_unlocked TIMESTAMP DEFAULT NOW(),
			PRIMARY KEY (user_id, server_id, achievement_id),
			FOREIGN KEY (user_id, server_id) REFERENCES users(user_id, server_id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS server_roles (
			server_id TEXT REFERENCES servers(server_id) ON DELETE CASCADE,
			role_id TEXT NOT NULL,
			required_points REAL DEFAULT 0,
			required_level INTEGER DEFAULT 0,
			PRIMARY KEY (server_id, role_id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// migrateSchema handles database schema migrations
func (db *DB) migrateSchema() error {
	migrations := []string{
		// Older installs tracked activity without XP; backfill the columns
		`ALTER TABLE user_activity_totals ADD COLUMN IF NOT EXISTS xp REAL DEFAULT 0`,
		`ALTER TABLE user_activity_daily ADD COLUMN IF NOT EXISTS xp REAL DEFAULT 0`,

		// Achievement names became the seed conflict key
		`ALTER TABLE achievements ADD CONSTRAINT achievements_name_key UNIQUE (name)`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			log.Warn().Err(err).Msg("migration failed (this might be expected)")
		}
	}

	return nil
}

// seedAchievements inserts the default achievement catalog. Existing rows
// are left untouched.
func (db *DB) seedAchievements() error {
	seeds := []struct {
		name        string
		description string
		xpReward    float64
	}{
		{"First Steps", "Send your first message", 10},
		{"Chatterbox", "Send 1000 messages", 100},
		{"Voice of the People", "Spend 10 hours in voice channels", 100},
		{"Week Warrior", "Keep a 7-day activity streak", 150},
		{"Monthly Regular", "Keep a 30-day activity streak", 500},
	}

	for _, seed := range seeds {
		_, err := db.conn.Exec(`
			INSERT INTO achievements (name, description, xp_reward)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING`,
			seed.name, seed.description, seed.xpReward)
		if err != nil {
			return fmt.Errorf("failed to seed achievement %q: %w", seed.name, err)
		}
	}

	return nil
}
