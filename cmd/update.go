package cmd

import (
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const defaultRepository = "s0up4200/gopdfctl"

var (
	updateRepository string
	updateCheckOnly  bool
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:               "update",
	Short:             "Update gopdfctl to the latest release",
	Args:              cobra.NoArgs,
	PersistentPreRunE: initializeLogging,
	RunE:              runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateRepository, "repository", defaultRepository, "GitHub repository releases are fetched from")
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "only report whether an update is available")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	current, err := currentVersion()
	if err != nil {
		return fmt.Errorf("cannot update: %w", err)
	}

	repository := updateRepository
	if !cmd.Flags().Changed("repository") && cfg != nil && cfg.Update.Repository != "" {
		repository = cfg.Update.Repository
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repository))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", repository)
	}

	if latest.LessOrEqual(current.String()) {
		logger.Info().Str("version", current.String()).Msg("Already up to date")
		return nil
	}

	if updateCheckOnly {
		logger.Info().
			Str("current", current.String()).
			Str("latest", latest.Version()).
			Msg("Update available")
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}

	logger.Info().Str("version", latest.Version()).Msg("Successfully updated")
	return nil
}
