package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/wheel/data"
)

func newTickersCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tickers",
		Short: "List tickers available in the dataset directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := data.NewFileProvider(ro.DataDir)

			tickers, err := provider.ListTickers()
			if err != nil {
				return err
			}
			if len(tickers) == 0 {
				fmt.Println("no datasets found; use 'wheel fetch' to download one")
				return nil
			}

			for _, ticker := range tickers {
				from, to, err := provider.DateRange(ticker)
				if err != nil {
					fmt.Printf("%-8s (unreadable: %v)\n", ticker, err)
					continue
				}
				fmt.Printf("%-8s %s to %s\n", ticker,
					from.Format("2006-01-02"), to.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func newFetchCmd(ro *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <ticker>...",
		Short: "Download dataset files into the local cache",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ro.BaseURL == "" {
				return fmt.Errorf("--base-url is required for fetch")
			}

			log := ro.logger()
			fetcher := data.NewFetcher(ro.BaseURL, ro.DataDir, log)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			for _, ticker := range args {
				if err := fetcher.Ensure(ctx, ticker); err != nil {
					return fmt.Errorf("fetch %s: %w", ticker, err)
				}
			}
			return nil
		},
	}
	return cmd
}
