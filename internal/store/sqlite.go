package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// SQLiteStore implements JournalStore using SQLite. Trades are kept as
// JSON payloads so loosely typed journal fields survive unchanged; the
// columns next to the payload exist for indexing and filtering.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializes writes that touch more than one row
}

// NewSQLiteStore opens (and creates if needed) a SQLite journal.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, apperrors.NewStoreError("sqlite", "create directory", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.NewStoreError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.NewStoreError("sqlite", "initialize schema", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Journal trades; payload holds the full record
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL DEFAULT '',
		time TEXT NOT NULL DEFAULT '',
		symbol TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Capital-growth challenges
	CREATE TABLE IF NOT EXISTS challenges (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		starting_capital REAL NOT NULL,
		target_capital REAL NOT NULL,
		start_date TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL DEFAULT '',
		target_date TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(date, time);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_challenges_active ON challenges(active);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Name returns the backend name.
func (s *SQLiteStore) Name() string { return "sqlite" }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadTrades returns every trade in date order.
func (s *SQLiteStore) LoadTrades(ctx context.Context) ([]models.RawTrade, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, payload FROM trades ORDER BY date, time, created_at, id")
	if err != nil {
		return nil, apperrors.NewStoreError("sqlite", "query trades", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}
	defer rows.Close()

	trades := []models.RawTrade{}
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, apperrors.NewStoreError("sqlite", "scan trade", err)
		}

		var t models.RawTrade
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, apperrors.NewStoreError("sqlite", "decode trade "+id, err)
		}
		t.ID = id
		trades = append(trades, t)
	}

	return trades, rows.Err()
}

// SaveTrade inserts or replaces a trade.
func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *models.RawTrade) error {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}

	payload, err := json.Marshal(trade)
	if err != nil {
		return apperrors.NewStoreError("sqlite", "encode trade", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trades (id, date, time, symbol, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			time = excluded.time,
			symbol = excluded.symbol,
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP
	`, trade.ID, dayOf(trade.Date), strings.TrimSpace(trade.Time), strings.TrimSpace(trade.Symbol), string(payload))
	if err != nil {
		return apperrors.NewStoreError("sqlite", "save trade", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}
	return nil
}

// DeleteTrade removes a trade by id.
func (s *SQLiteStore) DeleteTrade(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return apperrors.NewStoreError("sqlite", "delete trade", fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, id)
	}
	return nil
}

const challengeColumns = "id, name, starting_capital, target_capital, start_date, start_time, target_date, active, created_at"

func scanChallenge(row interface{ Scan(...any) error }) (*models.Challenge, error) {
	var c models.Challenge
	var active int
	var createdAt sql.NullTime
	if err := row.Scan(&c.ID, &c.Name, &c.StartingCapital, &c.TargetCapital, &c.StartDate, &c.StartTime, &c.TargetDate, &active, &createdAt); err != nil {
		return nil, err
	}
	c.Active = active == 1
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	return &c, nil
}

// LoadChallenge returns the challenge with the given id.
func (s *SQLiteStore) LoadChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+challengeColumns+" FROM challenges WHERE id = ?", id)
	c, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrChallengeNotFound, id)
	}
	if err != nil {
		return nil, apperrors.NewStoreError("sqlite", "load challenge", err)
	}
	return c, nil
}

// ActiveChallenge returns the active challenge, or nil when none is active.
func (s *SQLiteStore) ActiveChallenge(ctx context.Context) (*models.Challenge, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+challengeColumns+" FROM challenges WHERE active = 1 ORDER BY created_at DESC LIMIT 1")
	c, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreError("sqlite", "load active challenge", err)
	}
	return c, nil
}

// ListChallenges returns every challenge, newest first.
func (s *SQLiteStore) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+challengeColumns+" FROM challenges ORDER BY created_at DESC, id")
	if err != nil {
		return nil, apperrors.NewStoreError("sqlite", "query challenges", err)
	}
	defer rows.Close()

	challenges := []models.Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, apperrors.NewStoreError("sqlite", "scan challenge", err)
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

// SaveChallenge inserts or replaces a challenge.
func (s *SQLiteStore) SaveChallenge(ctx context.Context, c *models.Challenge) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("sqlite", "begin", err)
	}
	defer tx.Rollback()

	if c.Active {
		if _, err := tx.ExecContext(ctx, "UPDATE challenges SET active = 0 WHERE id != ?", c.ID); err != nil {
			return apperrors.NewStoreError("sqlite", "deactivate challenges", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO challenges (`+challengeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.StartingCapital, c.TargetCapital, c.StartDate, c.StartTime, c.TargetDate, boolToInt(c.Active), c.CreatedAt)
	if err != nil {
		return apperrors.NewStoreError("sqlite", "save challenge", err)
	}

	return tx.Commit()
}

// SetChallengeActive toggles the active flag. Activating a challenge
// deactivates every other one.
func (s *SQLiteStore) SetChallengeActive(ctx context.Context, id string, active bool) error {
	c, err := s.LoadChallenge(ctx, id)
	if err != nil {
		return err
	}
	c.Active = active
	return s.SaveChallenge(ctx, c)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
