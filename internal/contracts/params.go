package contracts

import "fmt"

// MinSampleSize is the minimum aligned sample for any correlation or
// hit-rate statistic. Fixed, not configurable.
const MinSampleSize = 30

// Params is the fully enumerated analysis configuration. Every engine call
// takes it explicitly; the core never reads ambient state.
// ⭐ SSOT: 분석 파라미터는 이 구조체로만 전달
type Params struct {
	ReturnThreshold   float64 // trigger/response 최소 변동폭 (기본: 0.02)
	VolumeThreshold   float64 // 거래량 배율 최소값 (기본: 1.5)
	MinCorrelation    float64 // 상관 최소 절대값 (기본: 0.30)
	SignificanceLevel float64 // Bonferroni 보정 전 유의수준 (기본: 0.05)
	MaxLagDaily       int     // 기본: 10
	MaxLagWeekly      int     // 기본: 6
	MaxLagMonthly     int     // 기본: 3
	TopN              int     // 후보 랭킹 상한 (기본: 10)
	Workers           int     // 상관 스캔 병렬도 (기본: 8)
}

// DefaultParams returns the stock defaults. Callers normally override from
// their externally stored settings before handing these to the engines.
func DefaultParams() Params {
	return Params{
		ReturnThreshold:   0.02,
		VolumeThreshold:   1.5,
		MinCorrelation:    0.30,
		SignificanceLevel: 0.05,
		MaxLagDaily:       10,
		MaxLagWeekly:      6,
		MaxLagMonthly:     3,
		TopN:              10,
		Workers:           8,
	}
}

// Validate rejects out-of-range fields at the boundary.
func (p Params) Validate() error {
	if p.ReturnThreshold < 0 || p.ReturnThreshold > 1 {
		return fmt.Errorf("return_threshold must be in [0,1], got %v", p.ReturnThreshold)
	}
	if p.VolumeThreshold < 0 {
		return fmt.Errorf("volume_threshold must be >= 0, got %v", p.VolumeThreshold)
	}
	if p.MinCorrelation < 0 || p.MinCorrelation > 1 {
		return fmt.Errorf("min_correlation must be in [0,1], got %v", p.MinCorrelation)
	}
	if p.SignificanceLevel <= 0 || p.SignificanceLevel > 1 {
		return fmt.Errorf("significance_level must be in (0,1], got %v", p.SignificanceLevel)
	}
	for _, lag := range []struct {
		name string
		v    int
	}{
		{"max_lag_daily", p.MaxLagDaily},
		{"max_lag_weekly", p.MaxLagWeekly},
		{"max_lag_monthly", p.MaxLagMonthly},
	} {
		if lag.v < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", lag.name, lag.v)
		}
	}
	if p.TopN < 1 {
		return fmt.Errorf("top_n must be >= 1, got %d", p.TopN)
	}
	if p.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", p.Workers)
	}
	return nil
}

// MaxLag returns the lag bound for a timeframe.
func (p Params) MaxLag(tf Timeframe) int {
	switch tf {
	case TimeframeWeekly:
		return p.MaxLagWeekly
	case TimeframeMonthly:
		return p.MaxLagMonthly
	default:
		return p.MaxLagDaily
	}
}
