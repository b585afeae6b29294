package batch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/lagcorr/internal/backtest"
	"github.com/wonny/lagcorr/internal/cache"
	"github.com/wonny/lagcorr/internal/contracts"
	"github.com/wonny/lagcorr/internal/correlation"
	"github.com/wonny/lagcorr/internal/returns"
)

// RecalcJob rebuilds the correlation and backtest tables from scratch for
// every timeframe. 주말 새벽에 도는 풀 스캔. 결과가 전부 준비된 뒤에만
// 기존 행을 교체한다.
type RecalcJob struct {
	returns    *returns.Repository
	corrEngine *correlation.Engine
	corrRepo   *correlation.Repository
	btEngine   *backtest.Engine
	btRepo     *backtest.Repository
	cache      *cache.Cache
	params     contracts.Params
	log        zerolog.Logger
}

// NewRecalcJob wires the full-recalculation pipeline.
func NewRecalcJob(
	returnsRepo *returns.Repository,
	corrEngine *correlation.Engine,
	corrRepo *correlation.Repository,
	btEngine *backtest.Engine,
	btRepo *backtest.Repository,
	c *cache.Cache,
	params contracts.Params,
	log zerolog.Logger,
) *RecalcJob {
	return &RecalcJob{
		returns:    returnsRepo,
		corrEngine: corrEngine,
		corrRepo:   corrRepo,
		btEngine:   btEngine,
		btRepo:     btRepo,
		cache:      c,
		params:     params,
		log:        log.With().Str("component", "batch.recalc").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *RecalcJob) Name() string { return "correlation_recalc" }

// Schedule implements scheduler.Job. Saturday 02:00, after the weekly bars
// are finalized.
func (j *RecalcJob) Schedule() string { return "0 0 2 * * SAT" }

// Run implements scheduler.Job.
func (j *RecalcJob) Run(ctx context.Context) error {
	for _, tf := range contracts.Timeframes {
		if err := j.RunTimeframe(ctx, tf); err != nil {
			return fmt.Errorf("recalc %s: %w", tf, err)
		}
	}
	return nil
}

// RunTimeframe recalculates one timeframe end to end: correlation scan,
// backtest, persist, cache invalidation. CLI에서도 단독 호출된다.
func (j *RecalcJob) RunTimeframe(ctx context.Context, tf contracts.Timeframe) error {
	series, err := j.returns.LoadSeries(ctx, tf)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		j.log.Warn().Str("timeframe", string(tf)).Msg("no return series, skipping timeframe")
		return nil
	}

	records, err := j.corrEngine.ScanAll(ctx, series, tf, j.params)
	if err != nil {
		return fmt.Errorf("correlation scan: %w", err)
	}

	th := backtest.Thresholds{
		Trigger:  j.params.ReturnThreshold,
		Response: j.params.ReturnThreshold,
	}
	results, btErrs := j.btEngine.RunAll(ctx, records, series, th, j.params.Workers)
	// 시계열이 사라진 관계는 건너뛴다. 스캔 직후라 실제로는 드물다.
	for _, err := range btErrs {
		j.log.Warn().Err(err).Str("timeframe", string(tf)).Msg("backtest skipped relationship")
	}

	if err := j.corrRepo.DeleteByTimeframe(ctx, tf); err != nil {
		return err
	}
	if err := j.corrRepo.SaveAll(ctx, records); err != nil {
		return err
	}
	if err := j.btRepo.DeleteByTimeframe(ctx, tf); err != nil {
		return err
	}
	if err := j.btRepo.SaveAll(ctx, results); err != nil {
		return err
	}

	j.cache.Invalidate(ctx, tf)

	j.log.Info().
		Str("timeframe", string(tf)).
		Int("universe", len(series)).
		Int("correlations", len(records)).
		Int("backtests", len(results)).
		Msg("recalculation completed")

	return nil
}
