// Command gateops runs the single-day flight/gate/airline management engine
// behind an HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yegors/gateops/internal/api"
	"github.com/yegors/gateops/internal/assignment"
	"github.com/yegors/gateops/internal/billing"
	"github.com/yegors/gateops/internal/config"
	"github.com/yegors/gateops/internal/core"
	"github.com/yegors/gateops/internal/ingestion"
	"github.com/yegors/gateops/internal/query"
	"github.com/yegors/gateops/internal/storage/sqlite"
	"github.com/yegors/gateops/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "gateops: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting gateops",
		logger.String("station", cfg.Station.AirportCode),
		logger.String("operational_day", cfg.Station.OperationalDay),
	)

	defaults, err := cfg.FeeSchedule()
	if err != nil {
		return err
	}
	rules, err := cfg.DiscountRules()
	if err != nil {
		return err
	}

	registry := core.NewRegistry()
	assigner := assignment.NewEngine(registry, log)
	biller, err := billing.NewEngine(registry, cfg.Station.AirportCode, rules, log)
	if err != nil {
		return err
	}
	queries := query.NewService(registry)

	// Optional archive storage.
	var assignmentStorage *sqlite.AssignmentStorage
	var invoiceStorage *sqlite.InvoiceStorage
	if cfg.Storage.Enabled {
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		if assignmentStorage, err = sqlite.NewAssignmentStorage(db, log); err != nil {
			return err
		}
		if invoiceStorage, err = sqlite.NewInvoiceStorage(db, log); err != nil {
			return err
		}
		log.Info("Archive storage enabled", logger.String("path", cfg.Storage.SQLitePath))
	}

	// Optional CSV seed data. Airlines before flights: flights reference them.
	if err := seed(cfg, registry, defaults, log); err != nil {
		return err
	}

	router := api.NewRouter(registry, assigner, biller, queries, cfg, defaults, assignmentStorage, invoiceStorage, log)
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", logger.String("addr", cfg.Addr()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("Shutting down", logger.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Shutdown complete")
	return nil
}

// seed loads the configured CSV files, if any.
func seed(cfg *config.Config, registry *core.Registry, defaults core.FeeSchedule, log *logger.Logger) error {
	paths := cfg.Ingestion
	if paths.AirlinesCSV == "" && paths.GatesCSV == "" && paths.FlightsCSV == "" {
		return nil
	}
	loader := ingestion.NewLoader(registry, defaults, log)
	if paths.AirlinesCSV != "" {
		if _, err := loader.LoadAirlinesFile(paths.AirlinesCSV); err != nil {
			return err
		}
	}
	if paths.GatesCSV != "" {
		if _, err := loader.LoadGatesFile(paths.GatesCSV); err != nil {
			return err
		}
	}
	if paths.FlightsCSV != "" {
		if _, err := loader.LoadFlightsFile(paths.FlightsCSV); err != nil {
			return err
		}
	}
	return nil
}
