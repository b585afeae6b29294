package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/lagcorr/internal/batch"
	"github.com/wonny/lagcorr/internal/cache"
	"github.com/wonny/lagcorr/internal/contracts"
	"github.com/wonny/lagcorr/internal/correlation"
	"github.com/wonny/lagcorr/internal/returns"
	"github.com/wonny/lagcorr/pkg/redis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "상관관계 분석 - 시차 상관 스캔/조회",
	Long: `시차 상관관계 분석 명령.

명령어:
  run      전체 유니버스 상관 스캔 후 저장
  pair     한 쌍의 전체 lag 프로파일 조회 (필터 없음)
  circular 양방향 순환 상관 쌍 탐지`,
}

var (
	analyzeTimeframe string

	pairTickerA string
	pairTickerB string
)

var analyzeRunCmd = &cobra.Command{
	Use:   "run",
	Short: "전체 유니버스 상관 스캔 후 저장",
	Long: `수익률 시계열 전체에 대해 시차 상관 스캔을 돌리고,
임계값을 통과한 관계로 기존 결과를 교체합니다.

Example:
  go run ./cmd/lagcorr analyze run --timeframe daily
  go run ./cmd/lagcorr analyze run --timeframe weekly`,
	RunE: runAnalyzeRun,
}

var analyzePairCmd = &cobra.Command{
	Use:   "pair",
	Short: "한 쌍의 전체 lag 프로파일 조회",
	Long: `한 순서쌍(a 선행, b 후행)의 모든 lag 통계를 필터 없이 출력합니다.

Example:
  go run ./cmd/lagcorr analyze pair --a AAPL --b MSFT
  go run ./cmd/lagcorr analyze pair --a AAPL --b MSFT --timeframe weekly`,
	RunE: runAnalyzePair,
}

var analyzeCircularCmd = &cobra.Command{
	Use:   "circular",
	Short: "양방향 순환 상관 쌍 탐지",
	Long: `저장된 상관관계에서 A→B와 B→A가 모두 강한 쌍을 찾습니다.

Example:
  go run ./cmd/lagcorr analyze circular --timeframe daily`,
	RunE: runAnalyzeCircular,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeRunCmd)
	analyzeCmd.AddCommand(analyzePairCmd)
	analyzeCmd.AddCommand(analyzeCircularCmd)

	analyzeCmd.PersistentFlags().StringVar(&analyzeTimeframe, "timeframe", "daily", "timeframe (daily|weekly|monthly)")

	analyzePairCmd.Flags().StringVar(&pairTickerA, "a", "", "leading ticker")
	analyzePairCmd.Flags().StringVar(&pairTickerB, "b", "", "lagging ticker")
	_ = analyzePairCmd.MarkFlagRequired("a")
	_ = analyzePairCmd.MarkFlagRequired("b")
}

func parseTimeframe(s string) (contracts.Timeframe, error) {
	tf := contracts.Timeframe(s)
	if !tf.Valid() {
		return "", fmt.Errorf("invalid timeframe %q (daily|weekly|monthly)", s)
	}
	return tf, nil
}

func runAnalyzeRun(cmd *cobra.Command, args []string) error {
	tf, err := parseTimeframe(analyzeTimeframe)
	if err != nil {
		return err
	}

	fmt.Printf("=== Analyze: Correlation Scan (%s) ===\n\n", tf)

	ctx := cmd.Context()
	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	rc, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rc.Close()
	c := cache.New(rc, cfg.Redis, log)

	params := batch.ParamsFromConfig(cfg.Analysis)
	returnsRepo := returns.NewRepository(db.Pool)
	corrRepo := correlation.NewRepository(db.Pool)
	engine := correlation.NewEngine(log)

	series, err := returnsRepo.LoadSeries(ctx, tf)
	if err != nil {
		return err
	}
	fmt.Printf("📊 Universe: %d tickers\n", len(series))

	records, err := engine.ScanAll(ctx, series, tf, params)
	if err != nil {
		return err
	}

	if err := corrRepo.DeleteByTimeframe(ctx, tf); err != nil {
		return err
	}
	if err := corrRepo.SaveAll(ctx, records); err != nil {
		return err
	}
	c.Invalidate(ctx, tf)

	fmt.Printf("\n✅ Scan completed: %d relationships retained\n", len(records))
	return nil
}

func runAnalyzePair(cmd *cobra.Command, args []string) error {
	tf, err := parseTimeframe(analyzeTimeframe)
	if err != nil {
		return err
	}

	fmt.Printf("=== Analyze: Lag Profile %s → %s (%s) ===\n\n", pairTickerA, pairTickerB, tf)

	ctx := cmd.Context()
	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	params := batch.ParamsFromConfig(cfg.Analysis)
	returnsRepo := returns.NewRepository(db.Pool)
	engine := correlation.NewEngine(log)

	series, err := returnsRepo.LoadSeries(ctx, tf)
	if err != nil {
		return err
	}
	a, ok := series[pairTickerA]
	if !ok {
		return fmt.Errorf("no %s return series for %s", tf, pairTickerA)
	}
	b, ok := series[pairTickerB]
	if !ok {
		return fmt.Errorf("no %s return series for %s", tf, pairTickerB)
	}

	profiles, err := engine.SinglePair(a, b, params.MaxLag(tf))
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("⚠️ Not enough overlapping history for any lag")
		return nil
	}

	fmt.Printf("%-5s %12s %12s %10s\n", "lag", "correlation", "p_value", "direction")
	for _, p := range profiles {
		fmt.Printf("%-5d %12.4f %12.6f %10s\n", p.Lag, p.Correlation, p.PValue, p.Direction)
	}
	return nil
}

func runAnalyzeCircular(cmd *cobra.Command, args []string) error {
	tf, err := parseTimeframe(analyzeTimeframe)
	if err != nil {
		return err
	}

	fmt.Printf("=== Analyze: Circular Correlations (%s) ===\n\n", tf)

	ctx := cmd.Context()
	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	corrRepo := correlation.NewRepository(db.Pool)
	engine := correlation.NewEngine(log)

	records, err := corrRepo.ListByTimeframe(ctx, tf)
	if err != nil {
		return err
	}

	circular := engine.DetectCircular(records, cfg.Analysis.MinCorrelation)
	if len(circular) == 0 {
		fmt.Println("No circular correlations found")
		return nil
	}

	for _, c := range circular {
		fmt.Printf("%s ⇄ %s  a→b lag %d (r=%.4f), b→a lag %d (r=%.4f)\n",
			c.TickerA, c.TickerB, c.LagAB, c.CorrelationAB, c.LagBA, c.CorrelationBA)
	}
	fmt.Printf("\n✅ %d circular pairs\n", len(circular))
	return nil
}
