package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/lagcorr/internal/backtest"
	"github.com/wonny/lagcorr/internal/batch"
	"github.com/wonny/lagcorr/internal/cache"
	"github.com/wonny/lagcorr/internal/correlation"
	"github.com/wonny/lagcorr/internal/returns"
	"github.com/wonny/lagcorr/internal/scheduler"
	"github.com/wonny/lagcorr/internal/trigger"
	"github.com/wonny/lagcorr/pkg/redis"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 - 배치 작업 상주 실행",
	Long: `배치 작업을 cron 스케줄로 상주 실행합니다.

작업:
  daily_trigger_update  평일 18:10, 최신일 트리거 감지/저장
  correlation_recalc    토요일 02:00, 상관/백테스트 전체 재계산

Example:
  go run ./cmd/lagcorr scheduler
  go run ./cmd/lagcorr scheduler --run-now correlation_recalc`,
	RunE: runScheduler,
}

var (
	// Scheduler flags
	schedulerRunNow string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().StringVar(&schedulerRunNow, "run-now", "", "시작 직후 즉시 실행할 작업 이름")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Scheduler ===")

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

	recalc := batch.NewRecalcJob(
		returnsRepo,
		correlation.NewEngine(log),
		correlation.NewRepository(db.Pool),
		backtest.NewEngine(log),
		backtest.NewRepository(db.Pool),
		c,
		params,
		log,
	)
	daily := batch.NewDailyUpdateJob(
		returnsRepo,
		trigger.NewDetector(log),
		trigger.NewRepository(db.Pool),
		c,
		params,
		log,
	)

	sched := scheduler.New(log)
	if err := sched.AddJob(daily); err != nil {
		return err
	}
	if err := sched.AddJob(recalc); err != nil {
		return err
	}

	sched.Start()
	fmt.Printf("Jobs: %v\n", sched.GetAllJobs())
	fmt.Println("Scheduler running. Press Ctrl+C to stop.")

	if schedulerRunNow != "" {
		if err := sched.RunJob(schedulerRunNow); err != nil {
			sched.Stop()
			return err
		}
		fmt.Printf("Triggered job %s\n", schedulerRunNow)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()

	// 종료 시 실행 이력 요약
	stats := sched.GetJobStats()
	if len(stats) > 0 {
		fmt.Println("\n=== Job Stats ===")
		for _, st := range stats {
			fmt.Printf("%-25s runs=%d success=%d failed=%d rate=%.0f%%\n",
				st.JobName, st.TotalRuns, st.SuccessCount, st.FailureCount, st.SuccessRate*100)
		}
	}
	return nil
}
