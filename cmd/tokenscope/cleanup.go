package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCleanupCmd() *cobra.Command {
	var (
		configPath string
		days       int
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete usage records older than N days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Printf("This will delete all records older than %d days. Continue? [y/N]: ", days)
				reader := bufio.NewReader(cmd.InOrStdin())
				answer, _ := reader.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			m, cleanup, err := openMonitor(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			deleted, err := m.CleanupOldData(context.Background(), days)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d records older than %d days.\n", deleted, days)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to tokenscope config file")
	cmd.Flags().IntVarP(&days, "days", "d", 90, "keep data for last N days")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
