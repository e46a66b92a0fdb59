package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itsmeyessir/itsmeyessir/internal/config"
	"github.com/itsmeyessir/itsmeyessir/internal/gateway"
	"github.com/itsmeyessir/itsmeyessir/internal/store"
	"github.com/itsmeyessir/itsmeyessir/internal/svg"
	"github.com/itsmeyessir/itsmeyessir/internal/usecase"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetches the latest stats and patches every target SVG",
	Long: `Fetches account stats and lines of code for the configured user, then rewrites
the id-tagged placeholders of every target SVG. The rendered values are printed as JSON.

The GitHub token is read from GITHUB_TOKEN (a .env file in the working directory is honoured).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(cfg.Token, gateway.Options{
			Timeout:           cfg.RequestTimeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		updater := usecase.NewUpdater(cfg, githubGateway, store.New(cfg.CachePath), svg.NewPatcher(logger), logger)

		result, err := updater.Run(cmd.Context())
		if err != nil {
			return err
		}

		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

// loadConfig layers the command flags over the file and environment configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("login") {
		cfg.Login, _ = flags.GetString("login")
	}
	if flags.Changed("target") {
		cfg.Targets, _ = flags.GetStringSlice("target")
	}
	if flags.Changed("cache") {
		cfg.CachePath, _ = flags.GetString("cache")
	}
	if flags.Changed("refresh") {
		cfg.Refresh, _ = flags.GetBool("refresh")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringP("login", "u", "", "GitHub user to report on")
	updateCmd.Flags().StringSliceP("target", "t", nil, "SVG file to patch (repeatable)")
	updateCmd.Flags().String("cache", "", "Line count cache file (.json, or .db for SQLite)")
	updateCmd.Flags().Bool("refresh", false, "Ignore cached line counts and walk every repository again")
}
