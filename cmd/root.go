package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/trainerhub/poketrainer/internal"
)

var (
	verbose   bool
	apiURL    string
	socketURL string
	dataDir   string
	timeout   time.Duration
	version   string = "dev"
	commit    string = "unknown"
	date      string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "poketrainer",
	Short: "Command-line client for the Pokémon trainer platform",
	Long: `A command-line client for the Pokémon trainer platform.

Log in, chat with other trainers in real time, browse and buy cards,
backgrounds and titles, trade on the market and manage your Pokémon.

Features:
  • Realtime trainer chat with presence
  • Paginated catalogs with purchases
  • Marketplace listings and uploads
  • Profile image generation and profile pictures
  • Pokémon spawner
  • Admin user management

Quick Start:
  poketrainer login --email ash@example.com    # Log in
  poketrainer chat                             # Join the trainer chat
  poketrainer cards list --page 2              # Browse cards

Configuration is read from <data-dir>/config.yaml, a .env file and
POKETRAINER_* environment variables; flags take precedence.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API root (default "+internal.DefaultAPIURL+")")
	rootCmd.PersistentFlags().StringVar(&socketURL, "socket-url", "", "Realtime server root (defaults to the API host)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for session state, cache and config")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Timeout for API calls (default 15s)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
