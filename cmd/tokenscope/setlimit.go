package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSetLimitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "set-limit <provider> <limit_type> <value>",
		Short: "Set a subscription limit for a provider",
		Long: `Set a subscription limit for a provider.

Examples:
  tokenscope set-limit anthropic max_plan_tokens 5000000
  tokenscope set-limit openai prepaid_credits 100`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, limitType := args[0], args[1]
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid limit value %q: %w", args[2], err)
			}

			m, cleanup, err := openMonitor(configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := m.SetSubscriptionLimit(provider, limitType, value); err != nil {
				return err
			}
			fmt.Printf("Updated %s %s to %v\n", provider, limitType, value)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to tokenscope config file")
	return cmd
}
