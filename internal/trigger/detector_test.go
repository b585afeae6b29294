package trigger

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/lagcorr/internal/contracts"
	"github.com/wonny/lagcorr/pkg/logger"
)

func snap(ticker string, today, avg float64) contracts.VolumeSnapshot {
	return contracts.VolumeSnapshot{Ticker: ticker, TodayVolume: today, AvgVolume20: avg}
}

func TestDetect(t *testing.T) {
	params := contracts.DefaultParams() // return 0.02, volume 1.5
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	returns := map[string]float64{
		"AAA": 0.035,  // 수익률/거래량 모두 충족
		"BBB": -0.025, // 하락도 트리거
		"CCC": 0.010,  // 수익률 미달
		"DDD": 0.040,  // 거래량 비율 미달
		"EEE": 0.020,  // 정확히 경계값 → 포함
	}
	volumes := map[string]contracts.VolumeSnapshot{
		"AAA": snap("AAA", 3_000_000, 1_000_000),
		"BBB": snap("BBB", 2_000_000, 1_000_000),
		"CCC": snap("CCC", 5_000_000, 1_000_000),
		"DDD": snap("DDD", 1_400_000, 1_000_000),
		"EEE": snap("EEE", 1_500_000, 1_000_000),
	}

	d := NewDetector(logger.Nop())
	events := d.Detect(returns, volumes, date, contracts.TimeframeDaily, params)

	require.Len(t, events, 3)
	assert.Equal(t, "AAA", events[0].Ticker)
	assert.Equal(t, "BBB", events[1].Ticker)
	assert.Equal(t, "EEE", events[2].Ticker)

	assert.Equal(t, 0.035, events[0].ReturnValue)
	assert.InDelta(t, 3.0, events[0].VolumeRatio, 1e-12)
	assert.Equal(t, date, events[0].Date)
	assert.Equal(t, contracts.TimeframeDaily, events[0].Timeframe)
}

func TestDetect_ExclusionRules(t *testing.T) {
	params := contracts.DefaultParams()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	returns := map[string]float64{
		"NORET": math.NaN(), // 수익률 없음
		"NOVOL": 0.05,       // 거래량 스냅샷 없음
		"ZEROV": 0.05,       // 평균 거래량 0 → 비율 정의 불가
		"GOOD":  0.05,
	}
	volumes := map[string]contracts.VolumeSnapshot{
		"NORET": snap("NORET", 2_000_000, 1_000_000),
		"ZEROV": snap("ZEROV", 2_000_000, 0),
		"GOOD":  snap("GOOD", 2_000_000, 1_000_000),
	}

	d := NewDetector(logger.Nop())
	events := d.Detect(returns, volumes, date, contracts.TimeframeDaily, params)

	require.Len(t, events, 1)
	assert.Equal(t, "GOOD", events[0].Ticker)
}

func TestDetect_EmptyUniverse(t *testing.T) {
	d := NewDetector(logger.Nop())
	events := d.Detect(nil, nil, time.Now(), contracts.TimeframeDaily, contracts.DefaultParams())
	assert.Empty(t, events)
}
