package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/lagcorr/internal/backtest"
	"github.com/wonny/lagcorr/internal/batch"
	"github.com/wonny/lagcorr/internal/contracts"
	"github.com/wonny/lagcorr/internal/correlation"
	"github.com/wonny/lagcorr/internal/returns"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "백테스트 - 히트율 검증",
	Long: `저장된 상관관계를 과거 데이터로 재생해 방향 적중률을 검증합니다.

명령어:
  run     저장된 전체 관계 백테스트 후 저장
  signals 한 관계의 최근 트리거/반응 이력 조회`,
}

var (
	backtestTimeframe string

	signalsTickerA string
	signalsTickerB string
	signalsLag     int
	signalsCount   int
)

var backtestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "저장된 전체 관계 백테스트 후 저장",
	Long: `상관 스캔이 남긴 모든 관계를 백테스트하고 결과를 교체합니다.

Example:
  go run ./cmd/lagcorr backtest run --timeframe daily`,
	RunE: runBacktestRun,
}

var backtestSignalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "한 관계의 최근 트리거/반응 이력 조회",
	Long: `한 관계(a 선행, b 후행, lag 고정)의 최근 신호를 최신순으로 출력합니다.

Example:
  go run ./cmd/lagcorr backtest signals --a AAPL --b MSFT --lag 3
  go run ./cmd/lagcorr backtest signals --a AAPL --b MSFT --lag 3 -n 20`,
	RunE: runBacktestSignals,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)
	backtestCmd.AddCommand(backtestSignalsCmd)

	backtestCmd.PersistentFlags().StringVar(&backtestTimeframe, "timeframe", "daily", "timeframe (daily|weekly|monthly)")

	backtestSignalsCmd.Flags().StringVar(&signalsTickerA, "a", "", "leading ticker")
	backtestSignalsCmd.Flags().StringVar(&signalsTickerB, "b", "", "lagging ticker")
	backtestSignalsCmd.Flags().IntVar(&signalsLag, "lag", 1, "lag in trading periods")
	backtestSignalsCmd.Flags().IntVarP(&signalsCount, "count", "n", 10, "number of signals")
	_ = backtestSignalsCmd.MarkFlagRequired("a")
	_ = backtestSignalsCmd.MarkFlagRequired("b")
}

func runBacktestRun(cmd *cobra.Command, args []string) error {
	tf, err := parseTimeframe(backtestTimeframe)
	if err != nil {
		return err
	}

	fmt.Printf("=== Backtest: Hit-Rate Run (%s) ===\n\n", tf)

	ctx := cmd.Context()
	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	params := batch.ParamsFromConfig(cfg.Analysis)
	returnsRepo := returns.NewRepository(db.Pool)
	corrRepo := correlation.NewRepository(db.Pool)
	btRepo := backtest.NewRepository(db.Pool)
	engine := backtest.NewEngine(log)

	records, err := corrRepo.ListByTimeframe(ctx, tf)
	if err != nil {
		return err
	}
	fmt.Printf("📊 Relationships to backtest: %d\n", len(records))

	series, err := returnsRepo.LoadSeries(ctx, tf)
	if err != nil {
		return err
	}

	th := backtest.Thresholds{
		Trigger:  params.ReturnThreshold,
		Response: params.ReturnThreshold,
	}
	results, errs := engine.RunAll(ctx, records, series, th, params.Workers)
	for _, err := range errs {
		log.Warn().Err(err).Msg("backtest skipped relationship")
	}

	if err := btRepo.DeleteByTimeframe(ctx, tf); err != nil {
		return err
	}
	if err := btRepo.SaveAll(ctx, results); err != nil {
		return err
	}

	fmt.Printf("\n✅ Backtest completed: %d results saved (%d skipped)\n", len(results), len(errs))
	return nil
}

func runBacktestSignals(cmd *cobra.Command, args []string) error {
	tf, err := parseTimeframe(backtestTimeframe)
	if err != nil {
		return err
	}

	fmt.Printf("=== Backtest: Recent Signals %s → %s lag %d (%s) ===\n\n",
		signalsTickerA, signalsTickerB, signalsLag, tf)

	ctx := cmd.Context()
	cfg, log, db, err := initDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	returnsRepo := returns.NewRepository(db.Pool)
	engine := backtest.NewEngine(log)

	series, err := returnsRepo.LoadSeries(ctx, tf)
	if err != nil {
		return err
	}

	rec := contracts.CorrelationRecord{
		TickerA:   signalsTickerA,
		TickerB:   signalsTickerB,
		Timeframe: tf,
		Lag:       signalsLag,
	}
	th := backtest.Thresholds{
		Trigger:  cfg.Analysis.ReturnThreshold,
		Response: cfg.Analysis.ReturnThreshold,
	}

	signals, err := engine.RecentSignals(rec, series, th, signalsCount)
	if err != nil {
		return err
	}
	if len(signals) == 0 {
		fmt.Println("No signals in the overlapping history")
		return nil
	}

	for _, s := range signals {
		mark := "miss"
		if s.Success {
			mark = "hit"
		}
		fmt.Printf("%s  a=%+.4f  b=%+.4f  %s\n",
			s.Date.Format("2006-01-02"), s.ReturnA, s.ReturnB, mark)
	}
	return nil
}
