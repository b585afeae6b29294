package backtest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/lagcorr/internal/contracts"
)

// Repository 백테스트 결과 저장소
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveAll upserts backtest records in one batch. hit_rate는 NoData일 때
// NULL로 저장한다 (0.0 아님).
func (r *Repository) SaveAll(ctx context.Context, records []contracts.BacktestRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO analysis.backtest_results
			(ticker_a, ticker_b, timeframe, lag, hit_rate, total_signals,
			 successful_signals, period_start, period_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (ticker_a, ticker_b, timeframe, lag) DO UPDATE SET
			hit_rate = EXCLUDED.hit_rate,
			total_signals = EXCLUDED.total_signals,
			successful_signals = EXCLUDED.successful_signals,
			period_start = EXCLUDED.period_start,
			period_end = EXCLUDED.period_end`

	for _, rec := range records {
		hitRate := sql.NullFloat64{Float64: rec.HitRate.Value, Valid: rec.HitRate.Valid}
		batch.Queue(query, rec.TickerA, rec.TickerB, rec.Timeframe, rec.Lag,
			hitRate, rec.TotalSignals, rec.SuccessfulSignals,
			rec.PeriodStart, rec.PeriodEnd)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert backtest result: %w", err)
		}
	}

	return nil
}

// DeleteByTimeframe removes all records for a timeframe ahead of a full
// recalculation.
func (r *Repository) DeleteByTimeframe(ctx context.Context, timeframe contracts.Timeframe) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM analysis.backtest_results WHERE timeframe = $1`, timeframe)
	if err != nil {
		return fmt.Errorf("delete backtest results for %s: %w", timeframe, err)
	}
	return nil
}

// ListByTickerA returns all backtest records where ticker_a leads.
func (r *Repository) ListByTickerA(ctx context.Context, tickerA string, timeframe contracts.Timeframe) ([]contracts.BacktestRecord, error) {
	query := `
		SELECT ticker_a, ticker_b, timeframe, lag, hit_rate, total_signals,
		       successful_signals, period_start, period_end
		FROM analysis.backtest_results
		WHERE ticker_a = $1 AND timeframe = $2
		ORDER BY ticker_b, lag`

	rows, err := r.pool.Query(ctx, query, tickerA, timeframe)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []contracts.BacktestRecord
	for rows.Next() {
		var rec contracts.BacktestRecord
		var hitRate sql.NullFloat64
		if err := rows.Scan(&rec.TickerA, &rec.TickerB, &rec.Timeframe, &rec.Lag,
			&hitRate, &rec.TotalSignals, &rec.SuccessfulSignals,
			&rec.PeriodStart, &rec.PeriodEnd); err != nil {
			return nil, err
		}
		if hitRate.Valid {
			rec.HitRate = contracts.KnownHitRate(hitRate.Float64)
		} else {
			rec.HitRate = contracts.NoHitRate()
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
