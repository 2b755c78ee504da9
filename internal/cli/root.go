// Package cli wires the wheel backtester's commands.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/wheel/internal/logging"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	ConfigPath string
	DataDir    string
	BaseURL    string
	DBPath     string
	LogLevel   string
	LogFile    string
}

func (ro *rootOptions) logger() zerolog.Logger {
	return logging.New(logging.Options{
		Level:   ro.LogLevel,
		Console: true,
		File:    ro.LogFile,
	})
}

func NewRootCmd() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "wheel",
		Short:         "Wheel strategy backtester over historical options chains",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&ro.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&ro.DataDir, "data", "./data", "Options dataset directory")
	cmd.PersistentFlags().StringVar(&ro.BaseURL, "base-url", "", "Remote dataset base URL for fetch-on-miss")
	cmd.PersistentFlags().StringVar(&ro.DBPath, "db", "./wheel.db", "SQLite journal database")
	cmd.PersistentFlags().StringVar(&ro.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&ro.LogFile, "log-file", "", "Also log to this file (rotated)")

	// Subcommands
	cmd.AddCommand(
		newRunCmd(ro),
		newRunsCmd(ro),
		newShowCmd(ro),
		newTickersCmd(ro),
		newFetchCmd(ro),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("wheel (dev)")
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
