package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show subscription status per provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cleanup, err := openMonitor(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := m.ComprehensiveReport(context.Background(), time.Time{}, time.Time{})
			if err != nil {
				return err
			}

			if len(report.SubscriptionStatus) == 0 {
				fmt.Println("No subscription limits configured.")
				return nil
			}

			providers := make([]string, 0, len(report.SubscriptionStatus))
			for p := range report.SubscriptionStatus {
				providers = append(providers, p)
			}
			sort.Strings(providers)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tLIMIT TYPE\tUSED\tLIMIT\tREMAINING\tUSAGE %\tSTATUS")
			for _, p := range providers {
				st := report.SubscriptionStatus[p]
				fmt.Fprintf(w, "%s\t%s\t%.0f\t%.0f\t%.0f\t%.1f%%\t%s\n",
					p, st.LimitType, st.Used, st.Limit, st.Remaining, st.PercentUsed, st.Status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to tokenscope config file")
	return cmd
}
