package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/lagcorr/internal/batch"
	"github.com/wonny/lagcorr/internal/cache"
	"github.com/wonny/lagcorr/internal/returns"
	"github.com/wonny/lagcorr/internal/trigger"
	"github.com/wonny/lagcorr/pkg/redis"
)

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "트리거 - 급변동 종목 감지/조회",
	Long: `당일 급변동(수익률+거래량) 종목을 감지하고 조회합니다.

명령어:
  detect 최신 거래일 트리거 감지 후 저장
  list   저장된 트리거 조회`,
}

var (
	triggersTimeframe string
	triggersDate      string
)

var triggersDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "최신 거래일 트리거 감지 후 저장",
	Long: `최신 거래일의 수익률과 거래량으로 트리거를 감지해 저장합니다.

Example:
  go run ./cmd/lagcorr triggers detect
  go run ./cmd/lagcorr triggers detect --timeframe weekly`,
	RunE: runTriggersDetect,
}

var triggersListCmd = &cobra.Command{
	Use:   "list",
	Short: "저장된 트리거 조회",
	Long: `한 날짜의 트리거 이벤트를 출력합니다. 캐시를 먼저 본다.

Example:
  go run ./cmd/lagcorr triggers list --date 2025-06-02
  go run ./cmd/lagcorr triggers list --date 2025-06-02 --timeframe weekly`,
	RunE: runTriggersList,
}

func init() {
	rootCmd.AddCommand(triggersCmd)
	triggersCmd.AddCommand(triggersDetectCmd)
	triggersCmd.AddCommand(triggersListCmd)

	triggersCmd.PersistentFlags().StringVar(&triggersTimeframe, "timeframe", "daily", "timeframe (daily|weekly|monthly)")
	triggersListCmd.Flags().StringVar(&triggersDate, "date", "", "date (YYYY-MM-DD)")
	_ = triggersListCmd.MarkFlagRequired("date")
}

func runTriggersDetect(cmd *cobra.Command, args []string) error {
	tf, err := parseTimeframe(triggersTimeframe)
	if err != nil {
		return err
	}

	fmt.Printf("=== Triggers: Detect (%s) ===\n\n", tf)

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

	job := batch.NewDailyUpdateJob(
		returns.NewRepository(db.Pool),
		trigger.NewDetector(log),
		trigger.NewRepository(db.Pool),
		c,
		batch.ParamsFromConfig(cfg.Analysis),
		log,
	)

	if err := job.RunTimeframe(ctx, tf); err != nil {
		return err
	}

	fmt.Println("\n✅ Trigger detection completed")
	return nil
}

func runTriggersList(cmd *cobra.Command, args []string) error {
	tf, err := parseTimeframe(triggersTimeframe)
	if err != nil {
		return err
	}
	date, err := time.Parse("2006-01-02", triggersDate)
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}

	fmt.Printf("=== Triggers: %s (%s) ===\n\n", triggersDate, tf)

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

	events, ok := c.GetTriggers(ctx, date, tf)
	if !ok {
		events, err = trigger.NewRepository(db.Pool).ListByDate(ctx, date, tf)
		if err != nil {
			return err
		}
		c.SetTriggers(ctx, date, tf, events)
	}

	if len(events) == 0 {
		fmt.Println("No triggers on this date")
		return nil
	}

	fmt.Printf("%-10s %12s %12s\n", "ticker", "return", "vol_ratio")
	for _, ev := range events {
		fmt.Printf("%-10s %+11.4f %12.2f\n", ev.Ticker, ev.ReturnValue, ev.VolumeRatio)
	}
	fmt.Printf("\n✅ %d triggers\n", len(events))
	return nil
}
