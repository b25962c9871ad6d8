// weekplan: weekly routine planner MCP server
//
// A weekly routine planner for parents whose capacity and custody change
// from week to week, served over MCP to any AI assistant.
//
// Usage:
//
//	weekplan serve          # Start MCP server (stdio transport)
//	weekplan week [date]    # Print a week's custody, mode and tasks
//	weekplan version        # Print the version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/weekplan/internal/config"
	"github.com/HendryAvila/weekplan/internal/logging"
)

// Global flags
var (
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "weekplan",
	Short: "Weekly routine planner MCP server",
	Long: `weekplan keeps a weekly household routine that adapts to custody weeks
and to how much capacity you have (regular, hard or hardest).

Configuration is read from ~/.weekplan/config.yaml (or --config) and
WEEKPLAN_* environment variables.

Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "weekplan": {
        "command": "weekplan",
        "args": ["serve"]
      }
    }
  }`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default: <data_dir>/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger. Logs always go to
// stderr so they never mix with MCP's stdio transport on stdout.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "weekplan")
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, logger, nil
}
