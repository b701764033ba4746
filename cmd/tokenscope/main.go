package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokenscope-ai/tokenscope/pkg/config"
	"github.com/tokenscope-ai/tokenscope/pkg/monitor"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "tokenscope",
		Short:   "Tokenscope — local token usage and cost monitor for LLM providers",
		Version: version,
	}

	root.AddCommand(
		newSummaryCmd(),
		newStatusCmd(),
		newSetLimitCmd(),
		newExportCmd(),
		newCleanupCmd(),
		newAlertsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openMonitor loads configuration and opens the usage monitor.
func openMonitor(configPath string) (*monitor.Monitor, func(), error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
	}

	m, err := monitor.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return m, func() { _ = m.Close() }, nil
}
