package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"jordanella.com/animix-go/internal/accounts"
	"jordanella.com/animix-go/internal/api"
	"jordanella.com/animix-go/internal/config"
	"jordanella.com/animix-go/internal/coordinator"
	"jordanella.com/animix-go/internal/database"
	"jordanella.com/animix-go/internal/events"
	"jordanella.com/animix-go/internal/logging"
	"jordanella.com/animix-go/internal/session"
)

func main() {
	configPath := flag.String("config", "Settings.ini", "Path to the settings file")
	useProxy := flag.Bool("proxy", false, "Route each account through proxy.txt (overrides UseProxy)")
	once := flag.Bool("once", false, "Run a single pass and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *useProxy, *once); err != nil {
		fmt.Fprintf(os.Stderr, "animix: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, forceProxy, once bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if forceProxy {
		cfg.UseProxy = true
	}

	level := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewLogger("Animix").SetMinLevel(level)

	baseURL, err := api.CheckBaseURL(cfg.AdvancedAntiDetection, cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("API ID not found, try again later: %w", err)
	}
	logger.Info(fmt.Sprintf("Using API endpoint %s", baseURL))

	list, err := accounts.LoadAccounts(cfg.DataFile)
	if err != nil {
		return err
	}
	var proxies []string
	if cfg.UseProxy {
		if proxies, err = accounts.LoadProxies(cfg.ProxyFile); err != nil {
			return err
		}
	}
	list, err = accounts.BindProxies(list, proxies, cfg.UseProxy)
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("Loaded %d accounts, %d proxies, %d threads", len(list), len(proxies), cfg.Concurrency()))

	catalogue, err := session.LoadCatalogue(cfg.UserAgentsFile)
	if err != nil {
		return err
	}
	agents, err := session.OpenUserAgentStore(cfg.SessionFile, catalogue)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg.DatabasePath, level)
	if err != nil {
		return err
	}
	defer db.Close()

	bus := events.NewEventBus(256)
	bus.OnPanic = func(event events.Event, recovered any) {
		logger.Warn(fmt.Sprintf("Event handler panic on %s: %v", event.Type, recovered))
	}
	eventLog, err := logging.NewEventLogger(bus, cfg.LogDir)
	if err != nil {
		bus.Stop()
		return err
	}
	defer func() {
		// drain queued events into the log before closing it
		bus.Stop()
		eventLog.Close()
	}()

	reporter := logging.NewErrorReporter()
	reporter.SetLogger(logging.NewLogger("ErrorReporter").SetMinLevel(level))

	runner := coordinator.NewSessionRunner(cfg, baseURL, agents, logging.NewLogger("Account").SetMinLevel(level))
	if cfg.UseProxy {
		if err := runner.Prepare(list); err != nil {
			return err
		}
	}

	fleet := coordinator.NewFleetCoordinator(coordinator.Options{
		Config:        cfg,
		Accounts:      list,
		Runner:        runner,
		DB:            db,
		EventBus:      bus,
		ErrorReporter: reporter,
		Logger:        logging.NewLogger("Fleet").SetMinLevel(level),
		RunOnce:       once,
	})

	err = fleet.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	logger.Info("Stopped")
	return err
}

func openDatabase(path string, level logging.LogLevel) (*database.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	db.SetLogger(logging.NewLogger("Database").SetMinLevel(level))
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
