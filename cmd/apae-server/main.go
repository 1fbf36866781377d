package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/backend"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/config"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/events"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/gsheet"
	apphttp "github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/http"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/ledger"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/log"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/services"
)

func main() {
	// Load .env for local development, ignore errors in production.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("starting server", log.FieldOperation, log.OpStartup)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	var (
		store *ledger.Store
		bk    backend.Backend
		err   error
	)
	switch cfg.DataBackend {
	case config.BackendSQLite:
		bk, err = backend.NewSQLiteBackend(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("failed to open sqlite backend",
				log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
	default:
		bk, err = backend.NewFileBackend(cfg.DataDir)
		if err != nil {
			logger.Error("failed to open file backend",
				log.FieldError, err.Error(), "dir", cfg.DataDir)
			os.Exit(1)
		}
	}
	defer bk.Close()
	logger.Info("data backend initialized", log.FieldBackend, cfg.DataBackend)
	store = ledger.NewStore(bk, logger)

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("failed to connect to AMQP", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("event publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("event publishing disabled, no AMQP_URL provided")
	}

	var uploader services.ReportUploader
	if cfg.SpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background(), logger)
		if err != nil {
			logger.Error("failed to initialize Google Sheets client", log.FieldError, err.Error())
			os.Exit(1)
		}
		uploader = client
		logger.Info("spreadsheet mirroring enabled", "spreadsheet_id", cfg.SpreadsheetID)
	} else {
		logger.Info("spreadsheet mirroring disabled, no GSHEET_SPREADSHEET_ID provided")
	}

	reportSvc := services.NewReportService(store, uploader, logger)
	ledgerSvc := services.NewLedgerService(store, publisher, reportSvc.Invalidate, logger)

	srv := apphttp.NewServer(cfg, ledgerSvc, reportSvc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.CacheCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if removed := reportSvc.CleanExpired(); removed > 0 {
					logger.Debug("expired reports evicted", "removed", removed)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("server stopped", log.FieldOperation, log.OpShutdown)
}
