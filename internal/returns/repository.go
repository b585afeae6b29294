package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/lagcorr/internal/contracts"
)

// Repository reads precomputed return series and volume data. Writing
// market data is out of scope here; a separate ingestion service owns
// those tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadSeries returns every ticker's return series for one timeframe,
// date-ascending per ticker.
func (r *Repository) LoadSeries(ctx context.Context, timeframe contracts.Timeframe) (map[string]*contracts.ReturnSeries, error) {
	query := `
		SELECT ticker, date, return_value
		FROM market.returns
		WHERE timeframe = $1
		ORDER BY ticker, date`

	rows, err := r.pool.Query(ctx, query, timeframe)
	if err != nil {
		return nil, fmt.Errorf("load %s return series: %w", timeframe, err)
	}
	defer rows.Close()

	series := make(map[string]*contracts.ReturnSeries)
	for rows.Next() {
		var (
			ticker string
			date   time.Time
			value  float64
		)
		if err := rows.Scan(&ticker, &date, &value); err != nil {
			return nil, err
		}

		s, ok := series[ticker]
		if !ok {
			s = &contracts.ReturnSeries{Ticker: ticker, Timeframe: timeframe}
			series[ticker] = s
		}
		s.Dates = append(s.Dates, date)
		s.Values = append(s.Values, value)
	}

	return series, rows.Err()
}

// LatestDate returns the most recent date with return data for a timeframe.
func (r *Repository) LatestDate(ctx context.Context, timeframe contracts.Timeframe) (time.Time, error) {
	var date time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(date) FROM market.returns WHERE timeframe = $1`, timeframe).Scan(&date)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest %s return date: %w", timeframe, err)
	}
	return date, nil
}

// ReturnsOn returns each ticker's return for one date and timeframe.
func (r *Repository) ReturnsOn(ctx context.Context, date time.Time, timeframe contracts.Timeframe) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ticker, return_value
		FROM market.returns
		WHERE date = $1 AND timeframe = $2`, date, timeframe)
	if err != nil {
		return nil, fmt.Errorf("returns on %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var (
			ticker string
			value  float64
		)
		if err := rows.Scan(&ticker, &value); err != nil {
			return nil, err
		}
		out[ticker] = value
	}

	return out, rows.Err()
}

// VolumeSnapshots returns each ticker's volume on the given date alongside
// its 20-session trailing average. Tickers with no history before the date
// come back with AvgVolume20=0 and are excluded downstream.
func (r *Repository) VolumeSnapshots(ctx context.Context, date time.Time) (map[string]contracts.VolumeSnapshot, error) {
	query := `
		SELECT v.ticker, v.volume, COALESCE(a.avg_volume, 0)
		FROM market.volumes v
		LEFT JOIN LATERAL (
			SELECT AVG(volume) AS avg_volume
			FROM (
				SELECT volume
				FROM market.volumes
				WHERE ticker = v.ticker AND date < v.date
				ORDER BY date DESC
				LIMIT 20
			) w
		) a ON true
		WHERE v.date = $1`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("volume snapshots on %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	out := make(map[string]contracts.VolumeSnapshot)
	for rows.Next() {
		var snap contracts.VolumeSnapshot
		if err := rows.Scan(&snap.Ticker, &snap.TodayVolume, &snap.AvgVolume20); err != nil {
			return nil, err
		}
		out[snap.Ticker] = snap
	}

	return out, rows.Err()
}
