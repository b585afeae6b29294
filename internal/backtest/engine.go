package backtest

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wonny/lagcorr/internal/contracts"
)

// Engine replays history to measure directional hit rates for surviving
// correlation relationships.
// ⭐ SSOT: 히트율 계산은 이 엔진에서만. 관계별로 독립이라 자유롭게 병렬화된다.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new backtest engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "backtest.engine").Logger(),
	}
}

// Thresholds holds the trigger/response move thresholds. Both default to the
// global return_threshold at the call site; the engine consumes them verbatim.
type Thresholds struct {
	Trigger  float64
	Response float64
}

// Run computes the BacktestRecord for one correlation relationship.
//
// lag는 거래일 기준이다: 트리거일로부터 공유 캘린더상 lag번째 다음
// 관측치를 응답으로 본다 (달력일 아님. 휴장일 전후 결과가 달라진다).
// 응답 관측치가 없는 트리거는 분자/분모 양쪽에서 제외한다.
func (e *Engine) Run(
	rec contracts.CorrelationRecord,
	series map[string]*contracts.ReturnSeries,
	th Thresholds,
) (contracts.BacktestRecord, error) {
	a, ok := series[rec.TickerA]
	if !ok {
		return contracts.BacktestRecord{}, &contracts.MissingSeriesError{Ticker: rec.TickerA}
	}
	b, ok := series[rec.TickerB]
	if !ok {
		return contracts.BacktestRecord{}, &contracts.MissingSeriesError{Ticker: rec.TickerB}
	}

	pair := a.Intersect(b)
	n := pair.Len()

	total := 0
	hits := 0

	for i := 0; i < n; i++ {
		if abs(pair.A[i]) < th.Trigger {
			continue
		}

		j := i + rec.Lag
		if j >= n {
			// 응답 관측 불가. miss로 세지 않고 제외
			continue
		}

		total++
		if sign(pair.B[j]) == sign(pair.A[i]) && abs(pair.B[j]) >= th.Response {
			hits++
		}
	}

	out := contracts.BacktestRecord{
		TickerA:           rec.TickerA,
		TickerB:           rec.TickerB,
		Timeframe:         rec.Timeframe,
		Lag:               rec.Lag,
		TotalSignals:      total,
		SuccessfulSignals: hits,
	}

	if n > 0 {
		out.PeriodStart = pair.Dates[0]
		out.PeriodEnd = pair.Dates[n-1]
	}

	// total=0이면 hit_rate는 NoData. 0.0으로 대신하지 않는다
	if total > 0 {
		out.HitRate = contracts.KnownHitRate(float64(hits) / float64(total))
	} else {
		out.HitRate = contracts.NoHitRate()
	}

	return out, nil
}

// RunAll backtests every relationship, partitioned across workers with
// private buffers merged in partition order. Errors (missing series) are
// surfaced alongside the successful records; the caller decides skip vs
// abort.
func (e *Engine) RunAll(
	ctx context.Context,
	records []contracts.CorrelationRecord,
	series map[string]*contracts.ReturnSeries,
	th Thresholds,
	workers int,
) ([]contracts.BacktestRecord, []error) {
	if len(records) == 0 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(records) {
		workers = len(records)
	}

	type chunkResult struct {
		records []contracts.BacktestRecord
		errs    []error
	}

	chunkSize := (len(records) + workers - 1) / workers
	results := make([]chunkResult, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunkSize
		hi := lo + chunkSize
		if hi > len(records) {
			hi = len(records)
		}
		if lo >= hi {
			continue
		}

		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			var res chunkResult
			for _, rec := range records[lo:hi] {
				select {
				case <-ctx.Done():
					results[w] = res
					return
				default:
				}

				bt, err := e.Run(rec, series, th)
				if err != nil {
					res.errs = append(res.errs, err)
					continue
				}
				res.records = append(res.records, bt)
			}
			results[w] = res
		}(w, lo, hi)
	}
	wg.Wait()

	var out []contracts.BacktestRecord
	var errs []error
	for _, res := range results {
		out = append(out, res.records...)
		errs = append(errs, res.errs...)
	}

	e.log.Info().
		Int("relationships", len(records)).
		Int("backtested", len(out)).
		Int("errors", len(errs)).
		Msg("backtest completed")

	return out, errs
}

// RecentSignals returns the last n trigger/response outcomes for one
// relationship, newest first. 대화형 점검용.
func (e *Engine) RecentSignals(
	rec contracts.CorrelationRecord,
	series map[string]*contracts.ReturnSeries,
	th Thresholds,
	n int,
) ([]contracts.SignalOutcome, error) {
	a, ok := series[rec.TickerA]
	if !ok {
		return nil, &contracts.MissingSeriesError{Ticker: rec.TickerA}
	}
	b, ok := series[rec.TickerB]
	if !ok {
		return nil, &contracts.MissingSeriesError{Ticker: rec.TickerB}
	}

	pair := a.Intersect(b)

	var signals []contracts.SignalOutcome
	for i := pair.Len() - 1 - rec.Lag; i >= 0 && len(signals) < n; i-- {
		if abs(pair.A[i]) < th.Trigger {
			continue
		}

		j := i + rec.Lag
		signals = append(signals, contracts.SignalOutcome{
			Date:    pair.Dates[i],
			ReturnA: pair.A[i],
			ReturnB: pair.B[j],
			Success: sign(pair.B[j]) == sign(pair.A[i]) && abs(pair.B[j]) >= th.Response,
		})
	}

	return signals, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
