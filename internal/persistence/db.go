// Package persistence provides SQLite-backed saves and high scores.
// Saving is best-effort everywhere: a failed save is logged, never
// surfaced as a gameplay error.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/keystroke-kingdom/internal/econ"
)

// ErrNoSave is returned when a player has no stored game.
var ErrNoSave = errors.New("no saved game")

// DB wraps a SQLite connection for saves and scores.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		player TEXT PRIMARY KEY,
		state BLOB NOT NULL,
		checksum TEXT NOT NULL,
		day INTEGER NOT NULL,
		employment REAL NOT NULL,
		inflation REAL NOT NULL,
		services_score REAL NOT NULL,
		difficulty TEXT NOT NULL,
		mode TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS high_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player TEXT NOT NULL,
		score INTEGER NOT NULL,
		final_employment REAL NOT NULL,
		final_inflation REAL NOT NULL,
		services_score REAL NOT NULL,
		days_completed INTEGER NOT NULL,
		difficulty TEXT NOT NULL,
		mode TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scores_player ON high_scores(player);
	CREATE INDEX IF NOT EXISTS idx_scores_score ON high_scores(score);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveGame upserts the player's single save slot. Difficulty and mode
// ride along so a load rebuilds the game under the rules it was saved
// with, not whatever the live game happens to use.
func (db *DB) SaveGame(player string, s *econ.State, difficulty, mode string) error {
	blob, checksum, err := encodeState(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	_, err = db.conn.Exec(`INSERT INTO saves
		(player, state, checksum, day, employment, inflation, services_score, difficulty, mode, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(player) DO UPDATE SET
			state = excluded.state,
			checksum = excluded.checksum,
			day = excluded.day,
			employment = excluded.employment,
			inflation = excluded.inflation,
			services_score = excluded.services_score,
			difficulty = excluded.difficulty,
			mode = excluded.mode,
			updated_at = excluded.updated_at`,
		player, blob, checksum, s.CurrentDay, s.Employment, s.Inflation, s.ServicesScore,
		difficulty, mode,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert save: %w", err)
	}
	return nil
}

// SavedGame is a restored state plus the rules it was played under.
type SavedGame struct {
	State      *econ.State
	Difficulty string
	Mode       string
}

// LoadGame restores the player's saved game. A corrupt or schema-invalid
// blob is reported as an error; callers fall back to a fresh game rather
// than failing the player.
func (db *DB) LoadGame(player string) (*SavedGame, error) {
	var row struct {
		State      []byte `db:"state"`
		Checksum   string `db:"checksum"`
		Difficulty string `db:"difficulty"`
		Mode       string `db:"mode"`
	}
	err := db.conn.Get(&row, "SELECT state, checksum, difficulty, mode FROM saves WHERE player = ?", player)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("select save: %w", err)
	}

	s, err := decodeState(row.State, row.Checksum)
	if err != nil {
		return nil, fmt.Errorf("decode save for %q: %w", player, err)
	}
	return &SavedGame{State: s, Difficulty: row.Difficulty, Mode: row.Mode}, nil
}

// DeleteSave removes the player's save slot (called after a run ends).
func (db *DB) DeleteSave(player string) error {
	_, err := db.conn.Exec("DELETE FROM saves WHERE player = ?", player)
	return err
}

// ScoreRow is one leaderboard entry.
type ScoreRow struct {
	Player          string  `db:"player" json:"player"`
	Score           int     `db:"score" json:"score"`
	FinalEmployment float64 `db:"final_employment" json:"final_employment"`
	FinalInflation  float64 `db:"final_inflation" json:"final_inflation"`
	ServicesScore   float64 `db:"services_score" json:"services_score"`
	DaysCompleted   int     `db:"days_completed" json:"days_completed"`
	Difficulty      string  `db:"difficulty" json:"difficulty"`
	Mode            string  `db:"mode" json:"mode"`
	CreatedAt       string  `db:"created_at" json:"created_at"`
}

// SubmitScore appends a finished run to the high-score table.
func (db *DB) SubmitScore(player string, s *econ.State, difficulty, mode string) error {
	if !s.GameOver {
		return fmt.Errorf("run not finished")
	}
	_, err := db.conn.Exec(`INSERT INTO high_scores
		(player, score, final_employment, final_inflation, services_score, days_completed, difficulty, mode, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		player, s.FinalScore, s.Employment, s.Inflation, s.ServicesScore,
		s.TotalDays, difficulty, mode,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	slog.Info("score submitted", "player", player, "score", s.FinalScore, "mode", mode)
	return nil
}

// Leaderboard returns the best score per player, highest first. The
// limit is capped at 100.
func (db *DB) Leaderboard(limit int) ([]ScoreRow, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	var rows []ScoreRow
	err := db.conn.Select(&rows, `
		SELECT player, score, final_employment, final_inflation,
		       services_score, days_completed, difficulty, mode, created_at
		FROM high_scores h
		WHERE id = (
			SELECT id FROM high_scores
			WHERE player = h.player
			ORDER BY score DESC, created_at ASC
			LIMIT 1
		)
		ORDER BY score DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	return rows, nil
}

// PlayerStats summarizes one player's history.
type PlayerStats struct {
	Player    string    `json:"player"`
	TotalRuns int       `json:"total_runs"`
	Best      *ScoreRow `json:"best,omitempty"`
}

// Stats returns a player's run count and best score.
func (db *DB) Stats(player string) (*PlayerStats, error) {
	st := &PlayerStats{Player: player}

	if err := db.conn.Get(&st.TotalRuns,
		"SELECT COUNT(*) FROM high_scores WHERE player = ?", player); err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	var best ScoreRow
	err := db.conn.Get(&best, `
		SELECT player, score, final_employment, final_inflation,
		       services_score, days_completed, difficulty, mode, created_at
		FROM high_scores WHERE player = ?
		ORDER BY score DESC, created_at ASC LIMIT 1`, player)
	if err == nil {
		st.Best = &best
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("best score: %w", err)
	}
	return st, nil
}
