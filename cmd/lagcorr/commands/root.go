package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wonny/lagcorr/pkg/config"
	"github.com/wonny/lagcorr/pkg/database"
	"github.com/wonny/lagcorr/pkg/logger"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lagcorr",
	Short: "lagcorr - 주식 선행/후행 상관관계 분석 시스템",
	Long: `lagcorr Unified CLI

시차 상관관계 스캔부터 히트율 백테스트, 트리거 감지,
반응 후보 랭킹까지 한 바이너리로 실행한다.

Usage:
  go run ./cmd/lagcorr [command]

Examples:
  go run ./cmd/lagcorr analyze run --timeframe daily
  go run ./cmd/lagcorr backtest run --timeframe daily
  go run ./cmd/lagcorr triggers detect
  go run ./cmd/lagcorr candidates --ticker AAPL
  go run ./cmd/lagcorr scheduler`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initDeps loads config and opens shared infrastructure for a command run.
func initDeps() (*config.Config, zerolog.Logger, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("connect to database: %w", err)
	}

	return cfg, log, db, nil
}
