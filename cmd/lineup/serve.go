package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/campfield/lineup-companion/internal/api"
	"github.com/campfield/lineup-companion/internal/app"
	"github.com/campfield/lineup-companion/internal/appinfo"
	"github.com/campfield/lineup-companion/internal/clock"
	"github.com/campfield/lineup-companion/internal/config"
	"github.com/campfield/lineup-companion/internal/ical"
	"github.com/campfield/lineup-companion/internal/singleinstance"
	"github.com/campfield/lineup-companion/internal/snapshot"
	"github.com/campfield/lineup-companion/internal/store"
	"github.com/campfield/lineup-companion/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the schedule service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	// 1. Single instance check (Windows: mutex, other: lock file)
	release, ok, err := singleinstance.AcquireLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !ok {
		return errors.New("another instance is already running")
	}
	defer release()

	// 2. Load configuration (corrupt config falls back to defaults with warning)
	cfg, _ := config.LoadConfig()
	cfg = config.ApplyEnvOverrides(cfg)

	// Flag overrides env and file
	if port, err := cmd.Flags().GetInt("port"); err == nil && port > 0 {
		cfg.Port = port
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// 3. Open SQLite store
	if _, err := config.EnsureDataDir(); err != nil {
		return fmt.Errorf("ensure data directory: %w", err)
	}
	dbPath, err := config.DatabasePath()
	if err != nil {
		return err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Startup maintenance, best effort
	if n, err := db.PruneParseFailures(ctx, time.Now()); err != nil {
		log.Printf("Warning: prune parse failures: %v", err)
	} else if n > 0 {
		log.Printf("Pruned %d old parse failure records", n)
	}
	if _, err := db.VacuumIfNeeded(ctx); err != nil {
		log.Printf("Warning: vacuum: %v", err)
	}

	// 4. Snapshot service over upstream programme + external calendars
	sourcesPath, err := config.CalendarsPath()
	if err != nil {
		return err
	}
	sources, err := ical.LoadSources(sourcesPath)
	if err != nil {
		log.Printf("Warning: failed to load calendar sources: %v", err)
	}
	cacheDir, err := config.CalendarCacheDir()
	if err != nil {
		return err
	}

	snap := snapshot.New(snapshot.Config{
		UpstreamURL: cfg.UpstreamURL,
		Year:        cfg.EventYear,
		Location:    cfg.Location(),
		Sources:     ical.Enabled(sources),
		Fetcher:     ical.NewFetcher(cacheDir, logger),
		Failures:    db,
		Favourites:  db,
		Logger:      logger,
	})
	if err := snap.Refresh(ctx); err != nil {
		log.Printf("Warning: initial refresh failed: %v", err)
	}

	// 5. Periodic refresh jobs
	jobs := cron.New()
	if cfg.UpstreamURL != "" {
		if _, err := jobs.AddFunc(cfg.RefreshCron, func() {
			if err := snap.Refresh(ctx); err != nil {
				logger.Warn("scheduled refresh failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", cfg.RefreshCron, err)
		}
	}
	if len(sources) > 0 {
		if _, err := jobs.AddFunc(cfg.CalendarCron, func() {
			snap.RefreshCalendars(ctx)
		}); err != nil {
			return fmt.Errorf("invalid calendar schedule %q: %w", cfg.CalendarCron, err)
		}
	}
	if _, err := jobs.AddFunc("@daily", func() {
		if _, err := db.PruneParseFailures(ctx, time.Now()); err != nil {
			logger.Warn("prune parse failures failed", "error", err)
		}
		if _, err := db.VacuumIfNeeded(ctx); err != nil {
			logger.Warn("vacuum failed", "error", err)
		}
	}); err != nil {
		return err
	}
	jobs.Start()
	defer jobs.Stop()

	// 6. Build dependencies
	filtersPath, err := config.ShiftFiltersPath()
	if err != nil {
		return err
	}

	health := app.HealthService{Version: version.String()}
	scheduleSvc := &app.ScheduleService{Source: snap}
	shiftsSvc := &app.ShiftsService{Store: db, FiltersPath: filtersPath}
	favouritesSvc := &app.FavouritesService{Store: db}
	messagesSvc := &app.MessagesService{Store: db}
	statsSvc := &app.StatsService{Store: db}

	// 7. Determine bind address
	host := "127.0.0.1"
	if cfg.LanEnabled {
		host = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", host, cfg.Port)

	limiter := api.NewRateLimiter(api.DefaultRateLimiterConfig())

	serverOpts := []api.ServerOption{
		api.WithScheduleUsecase(scheduleSvc),
		api.WithShiftsUsecase(shiftsSvc),
		api.WithFavouritesUsecase(favouritesSvc),
		api.WithMessagesUsecase(messagesSvc),
		api.WithStatsUsecase(statsSvc),
		api.WithClock(clock.Real{}),
		api.WithYear(cfg.EventYear),
		api.WithRateLimiter(limiter),
	}
	if cfg.AuthEnabled() {
		serverOpts = append(serverOpts, api.WithBasicAuth(cfg.AuthUser, cfg.AuthPass))
		log.Println("Basic Auth enabled")
	}

	server := api.NewServer(addr, health, serverOpts...)

	// 8. Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting %s v%s on %s", appinfo.AppName, version.String(), addr)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
		log.Println("Shutting down...")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}
