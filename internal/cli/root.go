package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ChaoticTrials/Caelum/internal/version"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity  int
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:   "caelum",
		Short: "Release tooling for the Caelum modpack",
		Long: `caelum packages and publishes modpack releases: it assembles the
CurseForge client archive and the server archive from the pack manifest,
generates changelogs and mod lists, and publishes everything as a GitHub
release.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is caelum.toml at the repo root)")

	// Add all commands
	rootCmd.AddCommand(newBuildCmd(&configPath))
	rootCmd.AddCommand(newReleaseCmd(&configPath))
	rootCmd.AddCommand(newChangelogCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
