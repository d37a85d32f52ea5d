package main

import (
	"database/sql"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

const StartingElo = 1000

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// UserRow represents a user record in the database
type UserRow struct {
	ID        int64
	Username  string
	PassHash  string
	Elo       int
	IsAdmin   bool
	Design    Design
	Wins      int
	Losses    int
	CreatedAt time.Time
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		elo INTEGER NOT NULL DEFAULT 1000,
		is_admin INTEGER NOT NULL DEFAULT 0,
		body_color TEXT NOT NULL DEFAULT '#39ff14',
		eye_color TEXT NOT NULL DEFAULT '#000000',
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		p1 TEXT NOT NULL,
		p2 TEXT NOT NULL,
		score1 INTEGER NOT NULL DEFAULT 0,
		score2 INTEGER NOT NULL DEFAULT 0,
		winner TEXT NOT NULL DEFAULT '',
		elo_change INTEGER NOT NULL DEFAULT 0,
		mode TEXT NOT NULL DEFAULT 'pvp',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS achievements (
		user_id INTEGER NOT NULL REFERENCES users(id),
		achievement_id TEXT NOT NULL,
		unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, achievement_id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		room_id TEXT,
		data TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	CREATE INDEX IF NOT EXISTS idx_users_elo ON users(elo);
	CREATE INDEX IF NOT EXISTS idx_matches_players ON matches(p1, p2);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		log.Printf("DB migration error: %v", err)
	}
	return err
}

// CreateUser creates a new account with the starting rating and default
// design (returns user ID)
func (db *DB) CreateUser(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO users (username, pass_hash, elo) VALUES (?, ?, ?)",
		username, passHash, StartingElo,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func scanUser(row *sql.Row) (*UserRow, error) {
	u := &UserRow{}
	var isAdmin int
	err := row.Scan(&u.ID, &u.Username, &u.PassHash, &u.Elo, &isAdmin,
		&u.Design.BodyColor, &u.Design.EyeColor, &u.Wins, &u.Losses, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	u.IsAdmin = isAdmin != 0
	return u, err
}

const userCols = "id, username, pass_hash, elo, is_admin, body_color, eye_color, wins, losses, created_at"

// GetUserByUsername returns a user by name, or nil if absent
func (db *DB) GetUserByUsername(username string) (*UserRow, error) {
	return scanUser(db.conn.QueryRow(
		"SELECT "+userCols+" FROM users WHERE username = ?", username,
	))
}

// GetUserByID returns a user by ID, or nil if absent
func (db *DB) GetUserByID(id int64) (*UserRow, error) {
	return scanUser(db.conn.QueryRow(
		"SELECT "+userCols+" FROM users WHERE id = ?", id,
	))
}

// UsernameExists checks if a username is taken
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// UpdateDesign persists a user's snake colors
func (db *DB) UpdateDesign(username string, d Design) error {
	_, err := db.conn.Exec(
		"UPDATE users SET body_color = ?, eye_color = ? WHERE username = ?",
		d.BodyColor, d.EyeColor, username,
	)
	return err
}

// ApplyEloDelta moves a user's rating by delta (may be negative)
func (db *DB) ApplyEloDelta(username string, delta int) error {
	_, err := db.conn.Exec("UPDATE users SET elo = elo + ? WHERE username = ?", delta, username)
	return err
}

// RecordResult increments a user's win or loss counter
func (db *DB) RecordResult(userID int64, won bool) error {
	col := "losses"
	if won {
		col = "wins"
	}
	_, err := db.conn.Exec("UPDATE users SET "+col+" = "+col+" + 1 WHERE id = ?", userID)
	return err
}

// SaveMatch stores a finished match record
func (db *DB) SaveMatch(rec MatchRecord) error {
	_, err := db.conn.Exec(
		`INSERT INTO matches (p1, p2, score1, score2, winner, elo_change, mode)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.P1, rec.P2, rec.Score1, rec.Score2, rec.Winner, rec.EloChange, rec.Mode,
	)
	return err
}

func scanMatches(rows *sql.Rows) ([]MatchRecord, error) {
	defer rows.Close()
	var result []MatchRecord
	for rows.Next() {
		var r MatchRecord
		var created time.Time
		if err := rows.Scan(&r.P1, &r.P2, &r.Score1, &r.Score2, &r.Winner, &r.EloChange, &r.Mode, &created); err != nil {
			return nil, err
		}
		r.Date = created.Format(time.RFC3339)
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetHistory returns the most recent matches, newest first
func (db *DB) GetHistory(limit int) ([]MatchRecord, error) {
	rows, err := db.conn.Query(`
		SELECT p1, p2, score1, score2, winner, elo_change, mode, created_at
		FROM matches ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanMatches(rows)
}

// GetHistoryFor returns a user's recent matches, newest first
func (db *DB) GetHistoryFor(username string, limit int) ([]MatchRecord, error) {
	rows, err := db.conn.Query(`
		SELECT p1, p2, score1, score2, winner, elo_change, mode, created_at
		FROM matches WHERE p1 = ? OR p2 = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, username, username, limit)
	if err != nil {
		return nil, err
	}
	return scanMatches(rows)
}

// CountMatchesFor returns how many matches a user has played
func (db *DB) CountMatchesFor(username string) (int, error) {
	var count int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM matches WHERE p1 = ? OR p2 = ?", username, username,
	).Scan(&count)
	return count, err
}

// GetLeaderboard returns the top users by Elo
func (db *DB) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := db.conn.Query(
		"SELECT username, elo FROM users ORDER BY elo DESC, username ASC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Elo); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		result = append(result, e)
	}
	return result, rows.Err()
}

// UnlockAchievement records an achievement for a user. Returns true if it
// was newly unlocked.
func (db *DB) UnlockAchievement(userID int64, achievementID string) (bool, error) {
	res, err := db.conn.Exec(
		"INSERT OR IGNORE INTO achievements (user_id, achievement_id) VALUES (?, ?)",
		userID, achievementID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetSetting returns a settings value, or "" if absent
func (db *DB) GetSetting(key string) string {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return ""
	}
	return value
}

// SetSetting stores a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
