package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/campfield/lineup-companion/internal/appinfo"
	"github.com/campfield/lineup-companion/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lineup",
		Short: appinfo.AppName + " serves a local copy of the festival schedule",
		Long: appinfo.AppName + ` keeps a local, filterable copy of the festival
programme and the volunteer shift rota. Running without a subcommand
starts the service.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; env vars still override the config file.
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Printf("Warning: failed to load .env: %v", err)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	root.PersistentFlags().Int("port", 0, "HTTP server port (overrides config)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newCalendarsCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appinfo.AppName, version.String())
		},
	}
}
