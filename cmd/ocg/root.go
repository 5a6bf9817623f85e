package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pthm/ocg/internal/cli"
	"github.com/pthm/ocg/internal/logging"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string
	logger     = zerolog.Nop()

	// Persistent flags
	cfgFile string
	verbose int
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "ocg",
	Short: "OpenRPC client generator",
	Long: `ocg - OpenRPC client generator

ocg reads an OpenRPC document from a JSON-RPC server (via rpc.discover) or
from a local file and generates a typed client library for Python,
TypeScript or Go.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help/completion/version commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		logger, err = logging.New(os.Stderr, logging.Options{
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
			Verbose: verbose,
			Quiet:   quiet,
		})
		if err != nil {
			return cli.ConfigError("configuring logger", err)
		}
		if configPath != "" {
			logger.Debug().Str("path", configPath).Msg("loaded config file")
		}

		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

// Command group IDs
const (
	groupClient   = "client"
	groupDocument = "document"
	groupUtility  = "utility"
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover ocg.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase verbosity (can be repeated)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupClient, Title: "Client:"},
		&cobra.Group{ID: groupDocument, Title: "Document:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	// Client commands
	generateCmd.GroupID = groupClient
	languagesCmd.GroupID = groupClient
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(languagesCmd)

	// Document commands
	validateCmd.GroupID = groupDocument
	doctorCmd.GroupID = groupDocument
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(doctorCmd)

	// Utility commands
	configCmd.GroupID = groupUtility
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveBool returns true if any of the provided values is true.
// Used for boolean flags where any true value should win.
func resolveBool(values ...bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}
