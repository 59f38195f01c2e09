// Package main is the entry point for the FundKeep bookkeeping server.
//
// Startup sequence:
//  1. Load configuration from environment variables (.env supported)
//  2. Initialize structured logging
//  3. Open and migrate the books and registry databases
//  4. Wire repositories, services and HTTP handlers
//  5. Overlay configuration with values from the settings database
//  6. Register and start scheduled jobs (materializer, WAL maintenance)
//  7. Start the HTTP server and wait for a shutdown signal
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

	"github.com/fundkeep/fundkeep/internal/config"
	"github.com/fundkeep/fundkeep/internal/database"
	"github.com/fundkeep/fundkeep/internal/modules/accounts"
	accounthandlers "github.com/fundkeep/fundkeep/internal/modules/accounts/handlers"
	"github.com/fundkeep/fundkeep/internal/modules/enrollments"
	enrollmenthandlers "github.com/fundkeep/fundkeep/internal/modules/enrollments/handlers"
	"github.com/fundkeep/fundkeep/internal/modules/reconciliation"
	reconciliationhandlers "github.com/fundkeep/fundkeep/internal/modules/reconciliation/handlers"
	"github.com/fundkeep/fundkeep/internal/modules/recurring"
	recurringhandlers "github.com/fundkeep/fundkeep/internal/modules/recurring/handlers"
	"github.com/fundkeep/fundkeep/internal/modules/settings"
	settingshandlers "github.com/fundkeep/fundkeep/internal/modules/settings/handlers"
	"github.com/fundkeep/fundkeep/internal/modules/transactions"
	transactionhandlers "github.com/fundkeep/fundkeep/internal/modules/transactions/handlers"
	"github.com/fundkeep/fundkeep/internal/scheduler"
	"github.com/fundkeep/fundkeep/internal/server"
	"github.com/fundkeep/fundkeep/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Str("org_id", cfg.OrgID).Msg("Starting FundKeep")

	// books.db holds the ledger (maximum durability profile); registry.db
	// holds organizations, enrollments and operational data.
	booksDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "books.db"),
		Profile: database.ProfileLedger,
		Name:    "books",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open books database")
	}
	defer booksDB.Close()

	registryDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "registry.db"),
		Profile: database.ProfileStandard,
		Name:    "registry",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open registry database")
	}
	defer registryDB.Close()

	for _, db := range []*database.DB{booksDB, registryDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to migrate database")
		}
	}

	// Each server instance serves one organization; make sure its row exists.
	if _, err := registryDB.Exec(`
		INSERT OR IGNORE INTO organizations (id, name, created_at)
		VALUES (?, ?, ?)
	`, cfg.OrgID, cfg.OrgID, time.Now().UTC().Format(time.RFC3339)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register organization")
	}

	// Repositories
	settingsRepo := settings.NewRepository(registryDB.Conn(), log)
	accountRepo := accounts.NewRepository(booksDB.Conn(), log)
	txRepo := transactions.NewRepository(booksDB.Conn(), log)
	categoryRepo := transactions.NewCategoryRepository(booksDB.Conn(), log)
	templateRepo := recurring.NewRepository(booksDB.Conn(), log)
	sessionRepo := reconciliation.NewRepository(booksDB.Conn(), log)
	enrollmentRepo := enrollments.NewRepository(registryDB.Conn(), log)

	// Settings values take precedence over environment variables so runtime
	// changes survive without a restart.
	if err := cfg.UpdateFromSettings(settingsRepo); err != nil {
		log.Warn().Err(err).Msg("Failed to overlay configuration from settings")
	}

	// Services
	materializer := recurring.NewMaterializer(templateRepo, txRepo, log)
	reconciliationService := reconciliation.NewService(sessionRepo, accountRepo, txRepo, log)

	// Scheduler
	jobHistory := scheduler.NewHistory(registryDB.Conn(), log)
	sched := scheduler.New(log)

	materializeJob := scheduler.NewMaterializeJob(materializer, jobHistory, log)
	if err := sched.AddJob(cfg.MaterializerSchedule, materializeJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.MaterializerSchedule).Msg("Failed to register materializer job")
	}

	walJob := scheduler.NewWALCheckpointJob([]*database.DB{booksDB, registryDB}, jobHistory, log)
	if err := sched.AddJob("@daily", walJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register WAL checkpoint job")
	}

	sched.Start()
	defer sched.Stop()

	// Catch up on occurrences that became due while the server was down.
	if err := sched.RunNow(materializeJob); err != nil {
		log.Error().Err(err).Msg("Startup materializer run failed")
	}

	// HTTP server
	srv := server.New(server.Config{
		Log:        log,
		BooksDB:    booksDB,
		RegistryDB: registryDB,
		Config:     cfg,
		Port:       cfg.Port,
		DevMode:    cfg.DevMode,

		AccountHandlers:        accounthandlers.NewHandler(accountRepo, txRepo, cfg.OrgID, log),
		TransactionHandlers:    transactionhandlers.NewHandler(txRepo, categoryRepo, cfg.OrgID, log),
		RecurringHandlers:      recurringhandlers.NewHandler(templateRepo, materializer, jobHistory, log),
		ReconciliationHandlers: reconciliationhandlers.NewHandler(reconciliationService, log),
		EnrollmentHandlers:     enrollmenthandlers.NewHandler(enrollmentRepo, cfg.OrgID, log),
		SettingsHandlers:       settingshandlers.NewHandler(settingsRepo, log),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	// Flush the WAL so the next startup opens clean database files.
	for _, db := range []*database.DB{booksDB, registryDB} {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			log.Warn().Err(err).Str("database", db.Name()).Msg("Final WAL checkpoint failed")
		}
	}

	log.Info().Msg("FundKeep stopped")
}
