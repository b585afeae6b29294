package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/lagcorr/internal/contracts"
)

// Repository 트리거 이벤트 저장소
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveAll upserts the day's trigger events in one batch.
func (r *Repository) SaveAll(ctx context.Context, events []contracts.TriggerEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO analysis.daily_triggers
			(ticker, date, timeframe, return_value, volume_ratio)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticker, date, timeframe) DO UPDATE SET
			return_value = EXCLUDED.return_value,
			volume_ratio = EXCLUDED.volume_ratio`

	for _, ev := range events {
		batch.Queue(query, ev.Ticker, ev.Date, ev.Timeframe, ev.ReturnValue, ev.VolumeRatio)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert trigger event: %w", err)
		}
	}

	return nil
}

// ListByDate returns the trigger events recorded for one date and timeframe,
// sorted by ticker.
func (r *Repository) ListByDate(ctx context.Context, date time.Time, timeframe contracts.Timeframe) ([]contracts.TriggerEvent, error) {
	query := `
		SELECT ticker, date, timeframe, return_value, volume_ratio
		FROM analysis.daily_triggers
		WHERE date = $1 AND timeframe = $2
		ORDER BY ticker`

	rows, err := r.pool.Query(ctx, query, date, timeframe)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []contracts.TriggerEvent
	for rows.Next() {
		var ev contracts.TriggerEvent
		if err := rows.Scan(&ev.Ticker, &ev.Date, &ev.Timeframe,
			&ev.ReturnValue, &ev.VolumeRatio); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

// DeleteBefore prunes trigger rows older than the cutoff date.
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM analysis.daily_triggers WHERE date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune trigger events: %w", err)
	}
	return tag.RowsAffected(), nil
}
