// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the listing-finder CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/listing-finder/internal/config"
	"github.com/pdiddy/listing-finder/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the listing-finder CLI.
var rootCmd = &cobra.Command{
	Use:   "listing-finder",
	Short: "Find, rate, and track for-sale listings around Boston",
	Long: `listing-finder evaluates for-sale listings end to end: it scrapes the
configured regions, drops listings seen in prior runs, filters by price and
location, enriches survivors with geocoded coordinates and driving times,
scores each one against weighted criteria, and writes ranked reports.

Each stage is available as a subcommand for partial runs; run executes the
whole pipeline.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; explicit environment always wins.
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./listing-finder.yaml or ~/.config/listing-finder/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("listing-finder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "listing-finder"))
		}
	}

	viper.SetEnvPrefix("LISTING_FINDER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig builds the validated pipeline configuration: defaults,
// config file, then environment overrides for deployment secrets.
func loadConfig() (types.PipelineConfig, error) {
	cfg, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		return cfg, err
	}

	if dsn := viper.GetString("postgres_dsn"); dsn != "" {
		cfg.Report.PostgresDSN = dsn
	}
	if dir := viper.GetString("output_dir"); dir != "" {
		cfg.Report.OutputDir = dir
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
