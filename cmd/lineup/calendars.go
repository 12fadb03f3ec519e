package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/campfield/lineup-companion/internal/config"
	"github.com/campfield/lineup-companion/internal/event"
	"github.com/campfield/lineup-companion/internal/ical"
)

func newCalendarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "Manage external calendar feeds",
	}
	cmd.AddCommand(newCalendarsRefreshCmd())
	cmd.AddCommand(newCalendarsExportCmd())
	return cmd
}

// calendarSetup loads the source list and builds a fetcher against the
// on-disk feed cache.
func calendarSetup() ([]ical.Source, *ical.Fetcher, error) {
	if _, err := config.EnsureDataDir(); err != nil {
		return nil, nil, err
	}
	path, err := config.CalendarsPath()
	if err != nil {
		return nil, nil, err
	}
	sources, err := ical.LoadSources(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load calendar sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("no calendar sources configured in %s", path)
	}
	cacheDir, err := config.CalendarCacheDir()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return ical.Enabled(sources), ical.NewFetcher(cacheDir, logger), nil
}

func newCalendarsRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch every enabled feed and report what parsed",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, fetcher, err := calendarSetup()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			for _, res := range fetcher.FetchAll(cmd.Context(), sources) {
				entries, err := ical.Parse(res.Source, res.Body, logger)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ERROR %v\n", res.Source.Name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries\n", res.Source.Name, len(entries))
			}
			return nil
		},
	}
}

func newCalendarsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the expanded calendar events for the event year as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := config.LoadConfig()
			cfg = config.ApplyEnvOverrides(cfg)
			loc := cfg.Location()

			sources, fetcher, err := calendarSetup()
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

			window := ical.Window{
				Start: time.Date(cfg.EventYear, 1, 1, 0, 0, 0, 0, loc),
				End:   time.Date(cfg.EventYear+1, 1, 1, 0, 0, 0, 0, loc),
			}

			var events []event.Event
			for _, res := range fetcher.FetchAll(cmd.Context(), sources) {
				entries, err := ical.Parse(res.Source, res.Body, logger)
				if err != nil {
					logger.Warn("skipping calendar feed", "source", res.Source.Name, "error", err)
					continue
				}
				events = append(events, ical.Expand(entries, window, loc, logger)...)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(events)
		},
	}
	return cmd
}
