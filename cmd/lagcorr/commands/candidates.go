package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/lagcorr/internal/backtest"
	"github.com/wonny/lagcorr/internal/cache"
	"github.com/wonny/lagcorr/internal/correlation"
	"github.com/wonny/lagcorr/internal/trigger"
	"github.com/wonny/lagcorr/pkg/redis"
)

var (
	candidatesTicker    string
	candidatesTimeframe string
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "후보 랭킹 - 트리거 종목의 반응 후보 조회",
	Long: `트리거된 종목에 대해 시차 상관 + 히트율 근거로 반응 후보를
점수순으로 출력합니다.

Example:
  go run ./cmd/lagcorr candidates --ticker AAPL
  go run ./cmd/lagcorr candidates --ticker AAPL --timeframe weekly`,
	RunE: runCandidates,
}

func init() {
	rootCmd.AddCommand(candidatesCmd)

	candidatesCmd.Flags().StringVar(&candidatesTicker, "ticker", "", "trigger ticker")
	candidatesCmd.Flags().StringVar(&candidatesTimeframe, "timeframe", "daily", "timeframe (daily|weekly|monthly)")
	_ = candidatesCmd.MarkFlagRequired("ticker")
}

func runCandidates(cmd *cobra.Command, args []string) error {
	tf, err := parseTimeframe(candidatesTimeframe)
	if err != nil {
		return err
	}

	fmt.Printf("=== Candidates for %s (%s) ===\n\n", candidatesTicker, tf)

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

	corrRepo := correlation.NewRepository(db.Pool)

	candidates, ok := c.GetCandidates(ctx, candidatesTicker, tf)
	if !ok {
		corrs, err := corrRepo.ListByTickerA(ctx, candidatesTicker, tf)
		if err != nil {
			return err
		}
		backtests, err := backtest.NewRepository(db.Pool).ListByTickerA(ctx, candidatesTicker, tf)
		if err != nil {
			return err
		}

		ranker := trigger.NewRanker(log)
		candidates = ranker.Rank(candidatesTicker, corrs, backtests, cfg.Analysis.TopN)
		c.SetCandidates(ctx, candidatesTicker, tf, candidates)
	}

	if len(candidates) == 0 {
		fmt.Println("No candidates: ticker has no surviving relationships")
		return nil
	}

	fmt.Printf("%-10s %4s %12s %10s %9s %10s %7s\n",
		"ticker_b", "lag", "correlation", "p_value", "hit_rate", "direction", "score")
	for _, cand := range candidates {
		hitRate := "null"
		if cand.HitRate.Valid {
			hitRate = fmt.Sprintf("%.3f", cand.HitRate.Value)
		}
		fmt.Printf("%-10s %4d %+12.4f %10.6f %9s %10s %7.4f\n",
			cand.TickerB, cand.Lag, cand.Correlation, cand.PValue,
			hitRate, cand.Direction, cand.Score)
	}
	// top_n으로 잘리기 전의 전체 생존 관계 수
	total, err := corrRepo.CountByTickerA(ctx, candidatesTicker, tf)
	if err != nil {
		return err
	}
	fmt.Printf("\n✅ %d candidates (of %d surviving relationships)\n", len(candidates), total)
	return nil
}
