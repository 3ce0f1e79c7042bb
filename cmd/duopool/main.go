package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tranchefi/duopool/internal/config"
	"github.com/tranchefi/duopool/internal/host"
	"github.com/tranchefi/duopool/internal/ledger"
	"github.com/tranchefi/duopool/internal/logger"
	"github.com/tranchefi/duopool/internal/pool"
	"github.com/tranchefi/duopool/internal/state"
	"github.com/tranchefi/duopool/internal/types"
	"github.com/tranchefi/duopool/internal/web"
)

const (
	DEFAULT_POOL_CONFIG_NAME    = "default_duopool"
	DEFAULT_POOL_CONFIG_VERSION = 1
)

// main is the entry point for the duopool service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Duopool core starting...")

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: config.DBHost, Port: config.DBPort,
		User: config.DBUser, Password: config.DBPassword,
		DBName: config.DBName, SSLMode: config.DBSSLMode,
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Pool Parameters
	poolParams, err := state.LoadActivePoolParameters(DEFAULT_POOL_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active pool parameters, using defaults and saving.")
		defaultParams := config.DefaultPoolParameters
		if _, err := state.SavePoolParameters(defaultParams, DEFAULT_POOL_CONFIG_NAME, DEFAULT_POOL_CONFIG_VERSION, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default pool parameters.")
		}
		poolParams = &defaultParams
	}
	log.Info().Msg("Pool parameters loaded successfully.")

	// --- 2. Core Wiring with Dependency Injection ---
	settlement := ledger.NewMemorySettlement()
	tranches := ledger.NewMemoryTranche()

	engine, err := pool.NewEngine(pool.Config{
		Settlement: settlement,
		Tranches:   tranches,
		Strategy:   config.StrategyCallers,
		FeeBps:     config.FeeBps,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create pool engine")
	}

	runtime, err := host.NewRuntime(host.Config{
		Engine:   engine,
		Store:    state.Store{},
		Interval: time.Duration(poolParams.AllocationIntervalSeconds) * time.Second,
		Params:   *poolParams,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create host runtime")
	}

	// Optional bootstrap market from environment.
	denomX, denomY := os.Getenv("BOOTSTRAP_DENOM_X"), os.Getenv("BOOTSTRAP_DENOM_Y")
	if denomX != "" && denomY != "" {
		if _, err := runtime.OnMarketInitialize(types.MarketID(1), denomX, denomY); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize bootstrap market")
		}
		log.Info().Str("pair", denomX+"/"+denomY).Msg("Bootstrap market initialized")
	}

	// --- 3. Start Web Server ---
	webServer := web.NewWebServer(config.WebPort, engine)
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting duopool dashboard")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 4. Run Yield Allocation Loop ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	runtime.RunLoop(ctx)
	log.Info().Msg("Duopool core stopped.")
}
