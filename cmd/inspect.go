package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itsmeyessir/itsmeyessir/internal/config"
	"github.com/itsmeyessir/itsmeyessir/internal/store"
	"github.com/itsmeyessir/itsmeyessir/internal/usecase"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarizes the line count cache as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if path, _ := cmd.Flags().GetString("cache"); path != "" {
			cfg.CachePath = path
		}

		cache, err := store.New(cfg.CachePath).Load(cmd.Context())
		if err != nil {
			return err
		}
		logger.Debug("Loaded cache", zap.String("path", cfg.CachePath), zap.Int("entries", len(cache)))

		summary, err := usecase.SummarizeCache(cache)
		if err != nil {
			return fmt.Errorf("failed to summarize cache: %w", err)
		}
		jsonData, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary to JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("cache", "", "Line count cache file (.json, or .db for SQLite)")
}
