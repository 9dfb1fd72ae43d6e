// Package commands implements the pmline CLI commands using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the CLI root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pmline",
		Short: "pmline - PM personal assistant over LINE",
		Long: `pmline is a product manager's personal assistant. It answers questions
grounded in a local Markdown knowledge base and acknowledges update
requests, served over a LINE webhook backed by a local Ollama model.

Examples:
  pmline serve
  pmline ask "本週的優先事項是什麼？"
  pmline kb list
  pmline updates --limit 20`,
		Version: version,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newAskCmd(),
		newKBCmd(),
		newUpdatesCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
