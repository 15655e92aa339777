package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ChaoticTrials/Caelum/internal/version"
	"github.com/ChaoticTrials/Caelum/pkg/commands/build"
	changelogcmd "github.com/ChaoticTrials/Caelum/pkg/commands/changelog"
	releasecmd "github.com/ChaoticTrials/Caelum/pkg/commands/release"
	"github.com/ChaoticTrials/Caelum/pkg/config"
)

// tokenFile is where the GitHub token is read from, kept out of the
// tracked config on purpose.
const tokenFile = "tokens.json"

func newBuildCmd(configPath *string) *cobra.Command {
	var keepBuild bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble the client and server archives without publishing",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(root, *configPath)
			if err != nil {
				return err
			}

			result, err := build.Build(build.Options{
				Root:      root,
				Config:    cfg,
				KeepBuild: keepBuild,
			})
			if err != nil {
				return err
			}

			pterm.Success.Printfln("Built %s", result.ClientZip)
			pterm.Success.Printfln("Built %s", result.ServerZip)
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepBuild, "keep-build", false, "Do not wipe the build directory first")
	return cmd
}

func newReleaseCmd(configPath *string) *cobra.Command {
	var (
		prerelease  bool
		skipPublish bool
	)

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Build the archives and publish them as a GitHub release",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(root, *configPath)
			if err != nil {
				return err
			}

			var token string
			if !skipPublish {
				token, err = config.LoadToken(tokenFile)
				if err != nil {
					return err
				}
			}

			result, err := releasecmd.Release(releasecmd.Options{
				Build: build.Options{
					Root:   root,
					Config: cfg,
				},
				Token:       token,
				Prerelease:  prerelease,
				SkipPublish: skipPublish,
			})
			if err != nil {
				return err
			}

			if !result.Published {
				pterm.Success.Printfln("Built %s without publishing", result.Tag)
				return nil
			}

			pterm.Success.Printfln("Published release %s (id %d)", result.Tag, result.ReleaseID)
			for _, asset := range result.Assets {
				pterm.Success.Printfln("Uploaded %s", asset)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Mark the GitHub release as a prerelease")
	cmd.Flags().BoolVar(&skipPublish, "skip-publish", false, "Stop after building the archives")
	return cmd
}

func newChangelogCmd() *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Generate the changelog for the current manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}

			result, err := changelogcmd.Generate(changelogcmd.Options{Root: root})
			if err != nil {
				return err
			}

			pterm.Success.Printfln("Wrote %s", result.Path)

			if preview {
				rendered, err := glamour.Render(result.Content, "auto")
				if err != nil {
					return err
				}
				fmt.Print(rendered)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "Render the changelog to the terminal")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("caelum version %s\n", version.Version)
			fmt.Printf("  commit: %s\n", version.Commit)
			fmt.Printf("  built:  %s\n", version.Date)
		},
	}
}
