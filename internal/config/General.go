package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// FeeBps is the swap fee applied to every exact-input swap, in basis points.
	FeeBps int64

	// StrategyCallers are the caller identifiers allowed to invoke privileged
	// operations such as target-rate updates.
	StrategyCallers []string

	// DBHost etc. are the PostgreSQL connection parameters.
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// WebPort is the dashboard/API listen port.
	WebPort string
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// Database and fee settings are required; the rest have sane defaults.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	FeeBps, err = getEnvAsInt64("POOL_FEE_BPS")
	if err != nil {
		return err
	}
	if FeeBps < 0 || FeeBps >= 10_000 {
		return errors.New("POOL_FEE_BPS must be in [0, 10000)")
	}

	DBHost, err = getEnv("DB_HOST")
	if err != nil {
		return err
	}
	DBPort, err = getEnvAsInt("DB_PORT")
	if err != nil {
		return err
	}
	DBUser, err = getEnv("DB_USER")
	if err != nil {
		return err
	}
	DBPassword, err = getEnv("DB_PASSWORD")
	if err != nil {
		return err
	}
	DBName, err = getEnv("DB_NAME")
	if err != nil {
		return err
	}
	DBSSLMode, err = getEnv("DB_SSLMODE")
	if err != nil {
		return err
	}

	if raw, exists := os.LookupEnv("STRATEGY_CALLERS"); exists && raw != "" {
		for _, caller := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(caller); trimmed != "" {
				StrategyCallers = append(StrategyCallers, trimmed)
			}
		}
	}

	WebPort = os.Getenv("WEB_PORT")
	if WebPort == "" {
		WebPort = "8080"
	}

	log.Debug().
		Int64("FeeBps", FeeBps).
		Str("DBHost", DBHost).
		Int("strategyCallers", len(StrategyCallers)).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsInt retrieves an environment variable as an int. Returns error if not set or invalid.
func getEnvAsInt(key string) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsInt64 retrieves an environment variable as an int64. Returns error if not set or invalid.
func getEnvAsInt64(key string) (int64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int64, got: " + valueStr)
	}
	return value, nil
}
