package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
	"trading-journal/internal/security"
)

// tradeRow is the journal_trades table.
type tradeRow struct {
	ID           string         `gorm:"primaryKey;size:64"`
	Date         string         `gorm:"index;size:10"`
	Time         string         `gorm:"size:8"`
	Symbol       string         `gorm:"index;size:64"`
	StrategyUsed string         `gorm:"size:128"`
	Payload      datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (tradeRow) TableName() string { return "journal_trades" }

// challengeRow is the journal_challenges table.
type challengeRow struct {
	ID              string `gorm:"primaryKey;size:64"`
	Name            string `gorm:"size:256"`
	StartingCapital float64
	TargetCapital   float64
	StartDate       string `gorm:"size:10"`
	StartTime       string `gorm:"size:8"`
	TargetDate      string `gorm:"size:10"`
	Active          bool   `gorm:"index"`
	CreatedAt       time.Time
}

func (challengeRow) TableName() string { return "journal_challenges" }

func toTradeRow(t models.RawTrade) (tradeRow, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return tradeRow{}, err
	}
	return tradeRow{
		ID:           t.ID,
		Date:         dayOf(t.Date),
		Time:         strings.TrimSpace(t.Time),
		Symbol:       strings.TrimSpace(t.Symbol),
		StrategyUsed: strings.TrimSpace(t.StrategyUsed),
		Payload:      datatypes.JSON(payload),
	}, nil
}

func (r tradeRow) raw() (models.RawTrade, error) {
	var t models.RawTrade
	if err := json.Unmarshal(r.Payload, &t); err != nil {
		return t, err
	}
	t.ID = r.ID
	return t, nil
}

func toChallengeRow(c models.Challenge) challengeRow {
	return challengeRow{
		ID:              c.ID,
		Name:            c.Name,
		StartingCapital: c.StartingCapital,
		TargetCapital:   c.TargetCapital,
		StartDate:       c.StartDate,
		StartTime:       c.StartTime,
		TargetDate:      c.TargetDate,
		Active:          c.Active,
		CreatedAt:       c.CreatedAt,
	}
}

func (r challengeRow) challenge() models.Challenge {
	return models.Challenge{
		ID:              r.ID,
		Name:            r.Name,
		StartingCapital: r.StartingCapital,
		TargetCapital:   r.TargetCapital,
		StartDate:       r.StartDate,
		StartTime:       r.StartTime,
		TargetDate:      r.TargetDate,
		Active:          r.Active,
		CreatedAt:       r.CreatedAt,
	}
}

// PostgresStore implements JournalStore on PostgreSQL through gorm.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to dsn and migrates the journal tables.
func NewPostgresStore(dsn string, debugSQL bool) (*PostgresStore, error) {
	level := gormlogger.Warn
	if debugSQL {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, apperrors.NewStoreError("postgres", "open", fmt.Errorf("%w: %s", apperrors.ErrConnectionFailed, security.MaskSensitive(err.Error())))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.NewStoreError("postgres", "open", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&tradeRow{}, &challengeRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, apperrors.NewStoreError("postgres", "migrate", err)
	}

	return &PostgresStore{db: db}, nil
}

// Name returns the backend name.
func (s *PostgresStore) Name() string { return "postgres" }

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dbError(op string, err error) error {
	return apperrors.NewStoreError("postgres", op, fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err))
}

// LoadTrades returns every trade in date order.
func (s *PostgresStore) LoadTrades(ctx context.Context) ([]models.RawTrade, error) {
	var rows []tradeRow
	if err := s.db.WithContext(ctx).Order("date, time, created_at, id").Find(&rows).Error; err != nil {
		return nil, dbError("load trades", err)
	}

	trades := make([]models.RawTrade, 0, len(rows))
	for _, r := range rows {
		t, err := r.raw()
		if err != nil {
			return nil, apperrors.NewStoreError("postgres", "decode trade "+r.ID, err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// SaveTrade inserts or replaces a trade.
func (s *PostgresStore) SaveTrade(ctx context.Context, trade *models.RawTrade) error {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	row, err := toTradeRow(*trade)
	if err != nil {
		return apperrors.NewStoreError("postgres", "encode trade", err)
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"date", "time", "symbol", "strategy_used", "payload", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return dbError("save trade", err)
	}
	return nil
}

// DeleteTrade removes a trade by id.
func (s *PostgresStore) DeleteTrade(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&tradeRow{})
	if result.Error != nil {
		return dbError("delete trade", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrTradeNotFound, id)
	}
	return nil
}

// LoadChallenge returns the challenge with the given id.
func (s *PostgresStore) LoadChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	var row challengeRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrChallengeNotFound, id)
	}
	if err != nil {
		return nil, dbError("load challenge", err)
	}
	c := row.challenge()
	return &c, nil
}

// ActiveChallenge returns the active challenge, or nil when none is active.
func (s *PostgresStore) ActiveChallenge(ctx context.Context) (*models.Challenge, error) {
	var rows []challengeRow
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("created_at DESC").Limit(1).Find(&rows).Error; err != nil {
		return nil, dbError("load active challenge", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	c := rows[0].challenge()
	return &c, nil
}

// ListChallenges returns every challenge, newest first.
func (s *PostgresStore) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var rows []challengeRow
	if err := s.db.WithContext(ctx).Order("created_at DESC, id").Find(&rows).Error; err != nil {
		return nil, dbError("list challenges", err)
	}
	out := make([]models.Challenge, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.challenge())
	}
	return out, nil
}

// SaveChallenge inserts or replaces a challenge.
func (s *PostgresStore) SaveChallenge(ctx context.Context, c *models.Challenge) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	row := toChallengeRow(*c)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.Active {
			if err := tx.Model(&challengeRow{}).Where("id <> ?", c.ID).Update("active", false).Error; err != nil {
				return err
			}
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
	})
	if err != nil {
		return dbError("save challenge", err)
	}
	return nil
}

// SetChallengeActive toggles the active flag.
func (s *PostgresStore) SetChallengeActive(ctx context.Context, id string, active bool) error {
	c, err := s.LoadChallenge(ctx, id)
	if err != nil {
		return err
	}
	c.Active = active
	return s.SaveChallenge(ctx, c)
}
