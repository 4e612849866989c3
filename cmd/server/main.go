// Package main is the entry point for the CountryCompare service: a
// two-country comparison and indicator aggregation engine over public
// country-facts and statistical time-series providers.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Hamza-spc/CountryCompare/internal/cache"
	"github.com/Hamza-spc/CountryCompare/internal/clientdata"
	"github.com/Hamza-spc/CountryCompare/internal/clients/restcountries"
	"github.com/Hamza-spc/CountryCompare/internal/clients/worldbank"
	"github.com/Hamza-spc/CountryCompare/internal/config"
	"github.com/Hamza-spc/CountryCompare/internal/database"
	"github.com/Hamza-spc/CountryCompare/internal/modules/comparison"
	comparisonhandlers "github.com/Hamza-spc/CountryCompare/internal/modules/comparison/handlers"
	"github.com/Hamza-spc/CountryCompare/internal/modules/directory"
	directoryhandlers "github.com/Hamza-spc/CountryCompare/internal/modules/directory/handlers"
	"github.com/Hamza-spc/CountryCompare/internal/modules/indicators"
	indicatorhandlers "github.com/Hamza-spc/CountryCompare/internal/modules/indicators/handlers"
	"github.com/Hamza-spc/CountryCompare/internal/reliability"
	"github.com/Hamza-spc/CountryCompare/internal/scheduler"
	"github.com/Hamza-spc/CountryCompare/internal/server"
	"github.com/Hamza-spc/CountryCompare/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	log.Info().Str("data_dir", cfg.DataDir).Int("port", cfg.Port).Msg("Starting CountryCompare")

	// Databases: the comparison store favors durability, the warm cache
	// favors speed.
	comparisonsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "comparisons.db"),
		Profile: database.ProfileStandard,
		Name:    "comparisons",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open comparisons database")
	}
	defer comparisonsDB.Close()

	clientDataDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open client data database")
	}
	defer clientDataDB.Close()

	for _, db := range []*database.DB{comparisonsDB, clientDataDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to migrate database")
		}
	}

	// Shared cache layer and provider clients.
	memCache := cache.New(log)
	warmCache := clientdata.NewRepository(clientDataDB.Conn())

	countryClient := restcountries.NewClient(cfg.RESTCountriesURL, cfg.ProviderTimeout, log)
	seriesClient := worldbank.NewClient(cfg.WorldBankURL, cfg.ProviderTimeout, log)

	// Services. The directory enriches records with the latest indicator
	// values, so it sits on top of the indicator fetcher.
	indicatorSvc := indicators.NewService(memCache, seriesClient, warmCache, cfg.IndicatorTTL, cfg.LatestWindow, log)
	directorySvc := directory.NewService(memCache, countryClient, indicatorSvc, warmCache, cfg.DirectoryTTL, log)
	comparisonSvc := comparison.NewService(directorySvc, indicatorSvc, comparison.NewRepository(comparisonsDB.Conn()), log)

	// Background jobs.
	sched := scheduler.New(log)
	databases := []*database.DB{comparisonsDB, clientDataDB}

	if err := sched.AddJob("@hourly", scheduler.NewSweepCacheJob(memCache, warmCache, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache sweep job")
	}
	if err := sched.AddJob("@daily", scheduler.NewCheckDatabasesJob(databases, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register database check job")
	}

	if cfg.Backup.Enabled {
		s3Client, err := reliability.NewS3Client(context.Background(), cfg.Backup, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create backup client")
		}
		backupSvc := reliability.NewBackupService(databases, s3Client, cfg.DataDir, log)
		if err := sched.AddJob("@daily", backupSvc); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Database backups enabled")
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:               log,
		Config:            cfg,
		Port:              cfg.Port,
		Databases:         databases,
		DirectoryHandler:  directoryhandlers.NewHandler(directorySvc, log),
		IndicatorsHandler: indicatorhandlers.NewHandler(indicatorSvc, comparisonSvc, log),
		ComparisonHandler: comparisonhandlers.NewHandler(comparisonSvc, log),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down HTTP server cleanly")
	}
}
