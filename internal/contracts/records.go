package contracts

import (
	"encoding/json"
	"time"
)

// Direction 상관 방향
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
)

// DirectionOf returns the direction implied by a correlation's sign.
func DirectionOf(correlation float64) Direction {
	if correlation > 0 {
		return DirectionPositive
	}
	return DirectionNegative
}

// CorrelationRecord is one lead/lag relationship that cleared both the
// magnitude and significance bars. (A,B,lag) and (B,A,lag) are distinct
// records with independently computed statistics.
// Unique key: (ticker_a, ticker_b, timeframe, lag).
type CorrelationRecord struct {
	TickerA     string    `json:"ticker_a"`
	TickerB     string    `json:"ticker_b"`
	Timeframe   Timeframe `json:"timeframe"`
	Lag         int       `json:"lag"`
	Correlation float64   `json:"correlation"`
	PValue      float64   `json:"p_value"`
	Direction   Direction `json:"direction"`
}

// HitRate models hit-rate evidence explicitly as Known(value) | NoData,
// so "0% hit rate" is never conflated with "no backtest evidence".
type HitRate struct {
	Value float64
	Valid bool
}

// KnownHitRate wraps a measured hit rate.
func KnownHitRate(v float64) HitRate {
	return HitRate{Value: v, Valid: true}
}

// NoHitRate marks a relationship with zero evaluable signals.
func NoHitRate() HitRate {
	return HitRate{}
}

// OrZero substitutes 0 for NoData: scoring penalizes missing evidence
// instead of excluding the relationship.
func (h HitRate) OrZero() float64 {
	if !h.Valid {
		return 0
	}
	return h.Value
}

// MarshalJSON renders NoData as null, never as 0.
func (h HitRate) MarshalJSON() ([]byte, error) {
	if !h.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(h.Value)
}

// UnmarshalJSON accepts null as NoData.
func (h *HitRate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*h = HitRate{}
		return nil
	}
	h.Valid = true
	return json.Unmarshal(data, &h.Value)
}

// BacktestRecord is the directional hit-rate evaluation of one
// CorrelationRecord. One record per relationship evaluated.
type BacktestRecord struct {
	TickerA           string    `json:"ticker_a"`
	TickerB           string    `json:"ticker_b"`
	Timeframe         Timeframe `json:"timeframe"`
	Lag               int       `json:"lag"`
	HitRate           HitRate   `json:"hit_rate"`
	TotalSignals      int       `json:"total_signals"`
	SuccessfulSignals int       `json:"successful_signals"`
	PeriodStart       time.Time `json:"period_start"`
	PeriodEnd         time.Time `json:"period_end"`
}

// TriggerEvent is one ticker whose return moved abnormally today on
// elevated volume. Ephemeral: recomputed fresh per query date.
type TriggerEvent struct {
	Ticker      string    `json:"ticker"`
	Date        time.Time `json:"date"`
	Timeframe   Timeframe `json:"timeframe"`
	ReturnValue float64   `json:"return_value"`
	VolumeRatio float64   `json:"volume_ratio"`
}

// Candidate is one ranked response ticker for a triggered ticker.
type Candidate struct {
	TickerB     string    `json:"ticker_b"`
	Lag         int       `json:"lag"`
	Correlation float64   `json:"correlation"`
	PValue      float64   `json:"p_value"`
	HitRate     HitRate   `json:"hit_rate"`
	Direction   Direction `json:"direction"`
	Score       float64   `json:"score"`
}

// VolumeSnapshot carries one ticker's volume context for trigger detection.
// avg_20d_volume가 0이면 비율이 정의되지 않으므로 해당 종목은 제외된다.
type VolumeSnapshot struct {
	Ticker      string  `json:"ticker"`
	TodayVolume float64 `json:"today_volume"`
	AvgVolume20 float64 `json:"avg_20d_volume"`
}

// CircularCorrelation marks a pair where A→B and B→A are both strong
// at their respective best lags.
type CircularCorrelation struct {
	TickerA       string    `json:"ticker_a"`
	TickerB       string    `json:"ticker_b"`
	Timeframe     Timeframe `json:"timeframe"`
	LagAB         int       `json:"lag_ab"`
	LagBA         int       `json:"lag_ba"`
	CorrelationAB float64   `json:"corr_ab"`
	CorrelationBA float64   `json:"corr_ba"`
}

// SignalOutcome is one historical trigger/response observation for a
// relationship, used for the recent-signal inspection view.
type SignalOutcome struct {
	Date    time.Time `json:"date"`
	ReturnA float64   `json:"return_a"`
	ReturnB float64   `json:"return_b"`
	Success bool      `json:"success"`
}
