// Package main is the slidecast command: an HTTP API and CLI that turn Marp
// slide decks into narrated videos.
package main

import (
	"fmt"
	"os"

	"github.com/amankumarsingh77/slidecast/internal/config"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "slidecast",
	Short:         "Export Marp slide decks as narrated videos",
	Long:          "slidecast renders each slide, synthesizes its speaker notes with edge-tts and stitches the result into an MP4 with ffmpeg.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.yml", "Path to the config file")
}

// loadApp reads the config file and environment and starts the logger.
func loadApp() (*config.Config, logger.Logger, error) {
	v, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loadConfig: %w", err)
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		return nil, nil, fmt.Errorf("parseConfig: %w", err)
	}
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	return cfg, appLogger, nil
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
