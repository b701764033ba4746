package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newAlertsCmd() *cobra.Command {
	var (
		configPath string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Show currently triggered usage alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid --format %q (use json or text)", format)
			}

			m, cleanup, err := openMonitor(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			alerts, err := m.SubscriptionAlerts(context.Background())
			if err != nil {
				return err
			}

			if format == "json" {
				out, err := json.MarshalIndent(map[string]any{
					"alerts":    alerts,
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			if len(alerts) == 0 {
				fmt.Println("No active alerts.")
				return nil
			}
			for _, a := range alerts {
				fmt.Printf("* %s\n", a)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to tokenscope config file")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (json or text)")
	return cmd
}
