package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rogerio-castellano/inventory-catalog/internal/config"
	"github.com/spf13/cobra"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// envFile is set by the --env-file flag.
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Materials inventory catalog service",
	Long: `inventory serves a REST API over a catalog of construction materials.
The catalog is stored in a JSON file by default, or in PostgreSQL.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./configs/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig applies the dotenv file, when present, and reads the configuration.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		// Variables already set in the environment win over the file.
		_ = godotenv.Load(envFile)
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
