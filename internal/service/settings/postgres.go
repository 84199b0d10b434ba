package settings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kapu/planning-center-groups-go/internal/domain"
	"github.com/kapu/planning-center-groups-go/pkg/errors"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const backendPostgres = "postgres"

const (
	createOptionsTable = `CREATE TABLE IF NOT EXISTS pcg_options (
	option_name  TEXT PRIMARY KEY,
	option_value TEXT NOT NULL DEFAULT '',
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	selectOptions = `SELECT option_name, option_value FROM pcg_options`
	upsertOption  = `INSERT INTO pcg_options (option_name, option_value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (option_name) DO UPDATE SET option_value = EXCLUDED.option_value, updated_at = NOW()`
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// PostgresStore keeps one row per option in pcg_options.
type PostgresStore struct {
	db       *sql.DB
	defaults domain.Settings
	logger   *zap.Logger
}

func NewPostgresStore(cfg PostgresConfig, defaults domain.Settings, logger *zap.Logger) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.NewSettingsError("failed to open postgres", backendPostgres, "open", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewSettingsError("failed to ping postgres", backendPostgres, "ping", err)
	}

	if _, err := db.ExecContext(ctx, createOptionsTable); err != nil {
		db.Close()
		return nil, errors.NewSettingsError("failed to create options table", backendPostgres, "migrate", err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
	)

	return &PostgresStore{
		db:       db,
		defaults: defaults,
		logger:   logger,
	}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (domain.Settings, error) {
	rows, err := s.db.QueryContext(ctx, selectOptions)
	if err != nil {
		s.logger.Error("Settings load failed", zap.Error(err))
		return domain.Settings{}, errors.NewSettingsError("load failed", backendPostgres, "select", err)
	}
	defer rows.Close()

	options := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return domain.Settings{}, errors.NewSettingsError("scan failed", backendPostgres, "select", err)
		}
		options[name] = value
	}
	if err := rows.Err(); err != nil {
		return domain.Settings{}, errors.NewSettingsError("load failed", backendPostgres, "select", err)
	}

	return FromOptions(options, s.defaults), nil
}

// Save writes every option in one transaction.
func (s *PostgresStore) Save(ctx context.Context, settings domain.Settings) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewSettingsError("begin failed", backendPostgres, "save", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for name, value := range ToOptions(settings) {
		if _, err = tx.ExecContext(ctx, upsertOption, name, value); err != nil {
			s.logger.Error("Settings save failed", zap.String("option", name), zap.Error(err))
			return errors.NewSettingsError("save failed", backendPostgres, "upsert", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.NewSettingsError("commit failed", backendPostgres, "save", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
