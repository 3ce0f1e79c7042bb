// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS pool_parameters (
			params_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			fee_bps BIGINT NOT NULL,
			target_rate DECIMAL(10, 8) NOT NULL,
			weight_x DECIMAL(10, 8) NOT NULL,
			weight_y DECIMAL(10, 8) NOT NULL,
			allocation_interval_seconds BIGINT NOT NULL,
			CONSTRAINT uq_pool_parameters_config_version UNIQUE (config_name, version)
		);
		CREATE INDEX IF NOT EXISTS idx_pool_parameters_config_active ON pool_parameters(config_name, is_active, activated_at DESC);

		CREATE TABLE IF NOT EXISTS market_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			cycle_id VARCHAR(64) NOT NULL,
			market_id BIGINT NOT NULL,
			snapshot_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			market JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_market_snapshots_timestamp ON market_snapshots(snapshot_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_market_snapshots_market_id ON market_snapshots(market_id);

		CREATE TABLE IF NOT EXISTS allocation_receipts (
			receipt_id SERIAL PRIMARY KEY,
			cycle_id VARCHAR(64) NOT NULL,
			market_id BIGINT NOT NULL,
			receipt_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			elapsed_seconds BIGINT NOT NULL,
			interest_due DECIMAL(40, 0) NOT NULL,
			total_fees DECIMAL(40, 0) NOT NULL,
			surplus DECIMAL(40, 0) NOT NULL,
			shortfall DECIMAL(40, 0) NOT NULL,
			wipeout BOOLEAN NOT NULL,
			principal_leveraged_after DECIMAL(40, 0) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_allocation_receipts_timestamp ON allocation_receipts(receipt_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_allocation_receipts_market_id ON allocation_receipts(market_id);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
