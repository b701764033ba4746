package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		configPath string
		days       int
	)

	cmd := &cobra.Command{
		Use:   "export <output_file>",
		Short: "Export usage records to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cleanup, err := openMonitor(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			start := time.Now().UTC().AddDate(0, 0, -days)
			result, err := m.ExportCSV(context.Background(), args[0], start, time.Time{})
			if err != nil {
				return err
			}
			fmt.Println(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to tokenscope config file")
	cmd.Flags().IntVarP(&days, "days", "d", 30, "export last N days")
	return cmd
}
