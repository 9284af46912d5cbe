package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	version string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simplemem-mcp",
	Short: "Memory management tools via MCP with OAuth support",
	Long: `simplemem-mcp bridges AI assistants to a memory backend.

It runs an MCP (Model Context Protocol) server whose tools forward to the
memory HTTP API, and an OAuth 2.0 authorization server that issues the
bearer tokens protecting the HTTP transport.

Subcommands:
  serve         Run the MCP server (stdio or streamable-http)
  oauth-server  Run the OAuth authorization server
  client        Manage OAuth clients and obtain tokens`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Running without a subcommand behaves like "serve".
		return runServe(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version for the application
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	addServeFlags(rootCmd)
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newOAuthServerCmd())
	rootCmd.AddCommand(newClientCmd())
}
