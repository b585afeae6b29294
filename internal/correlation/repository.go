package correlation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/lagcorr/internal/contracts"
)

// Repository 상관 결과 저장소
// 유니크 키 (ticker_a, ticker_b, timeframe, lag)의 upsert는 호출측이
// 직렬화한다 (키당 writer 1개 가정).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveAll upserts correlation records in one batch.
func (r *Repository) SaveAll(ctx context.Context, records []contracts.CorrelationRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO analysis.correlations
			(ticker_a, ticker_b, timeframe, lag, correlation, p_value, direction, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (ticker_a, ticker_b, timeframe, lag) DO UPDATE SET
			correlation = EXCLUDED.correlation,
			p_value = EXCLUDED.p_value,
			direction = EXCLUDED.direction,
			calculated_at = EXCLUDED.calculated_at`

	for _, rec := range records {
		batch.Queue(query, rec.TickerA, rec.TickerB, rec.Timeframe, rec.Lag,
			rec.Correlation, rec.PValue, rec.Direction)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert correlation: %w", err)
		}
	}

	return nil
}

// DeleteByTimeframe removes all records for a timeframe ahead of a full
// recalculation, so stale relationships do not survive the rescan.
func (r *Repository) DeleteByTimeframe(ctx context.Context, timeframe contracts.Timeframe) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM analysis.correlations WHERE timeframe = $1`, timeframe)
	if err != nil {
		return fmt.Errorf("delete correlations for %s: %w", timeframe, err)
	}
	return nil
}

// ListByTickerA returns all relationships where ticker_a leads.
func (r *Repository) ListByTickerA(ctx context.Context, tickerA string, timeframe contracts.Timeframe) ([]contracts.CorrelationRecord, error) {
	query := `
		SELECT ticker_a, ticker_b, timeframe, lag, correlation, p_value, direction
		FROM analysis.correlations
		WHERE ticker_a = $1 AND timeframe = $2
		ORDER BY ticker_b, lag`

	rows, err := r.pool.Query(ctx, query, tickerA, timeframe)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListByTimeframe returns every record for a timeframe.
func (r *Repository) ListByTimeframe(ctx context.Context, timeframe contracts.Timeframe) ([]contracts.CorrelationRecord, error) {
	query := `
		SELECT ticker_a, ticker_b, timeframe, lag, correlation, p_value, direction
		FROM analysis.correlations
		WHERE timeframe = $1
		ORDER BY ticker_a, ticker_b, lag`

	rows, err := r.pool.Query(ctx, query, timeframe)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// CountByTickerA returns the candidate count per trigger ticker.
func (r *Repository) CountByTickerA(ctx context.Context, tickerA string, timeframe contracts.Timeframe) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM analysis.correlations WHERE ticker_a = $1 AND timeframe = $2`,
		tickerA, timeframe,
	).Scan(&count)
	return count, err
}

func scanRecords(rows pgx.Rows) ([]contracts.CorrelationRecord, error) {
	var records []contracts.CorrelationRecord
	for rows.Next() {
		var rec contracts.CorrelationRecord
		if err := rows.Scan(&rec.TickerA, &rec.TickerB, &rec.Timeframe, &rec.Lag,
			&rec.Correlation, &rec.PValue, &rec.Direction); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
