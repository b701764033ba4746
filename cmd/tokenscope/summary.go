package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	var (
		configPath string
		provider   string
		days       int
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show aggregated usage, for one provider or all",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cleanup, err := openMonitor(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()

			if provider != "" {
				summary, err := m.ProviderSummary(ctx, provider, days)
				if err != nil {
					return err
				}
				fmt.Print(formatProviderSummary(summary))
				return nil
			}

			start := time.Now().UTC().AddDate(0, 0, -days)
			report, err := m.ComprehensiveReport(ctx, start, time.Time{})
			if err != nil {
				return err
			}
			fmt.Print(formatReport(report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to tokenscope config file")
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "filter by provider (openai, anthropic, gemini)")
	cmd.Flags().IntVarP(&days, "days", "d", 30, "number of days to show")
	return cmd
}
