package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/lagcorr/internal/contracts"
	"github.com/wonny/lagcorr/pkg/logger"
)

func corrRec(a, b string, lag int, r, p float64) contracts.CorrelationRecord {
	return contracts.CorrelationRecord{
		TickerA:     a,
		TickerB:     b,
		Timeframe:   contracts.TimeframeDaily,
		Lag:         lag,
		Correlation: r,
		PValue:      p,
		Direction:   contracts.DirectionOf(r),
	}
}

func btRec(a, b string, lag int, hitRate contracts.HitRate) contracts.BacktestRecord {
	return contracts.BacktestRecord{
		TickerA:   a,
		TickerB:   b,
		Timeframe: contracts.TimeframeDaily,
		Lag:       lag,
		HitRate:   hitRate,
	}
}

func TestRank_ScoreAndJoin(t *testing.T) {
	corrs := []contracts.CorrelationRecord{
		corrRec("TRG", "BBB", 2, 0.6, 0.01),
		corrRec("TRG", "CCC", 1, -0.5, 0.04),
		corrRec("OTH", "DDD", 1, 0.9, 0.001), // 다른 트리거 종목, 무시
	}
	backtests := []contracts.BacktestRecord{
		btRec("TRG", "BBB", 2, contracts.KnownHitRate(0.75)),
		btRec("TRG", "CCC", 1, contracts.KnownHitRate(0.50)),
		btRec("OTH", "DDD", 1, contracts.KnownHitRate(1.0)),
	}

	ranker := NewRanker(logger.Nop())
	out := ranker.Rank("TRG", corrs, backtests, 10)

	require.Len(t, out, 2)

	// max_p = 0.04 (이 호출의 후보 집합에서 계산)
	// BBB: 0.4*0.6 + 0.4*0.75 + 0.2*(1-0.01/0.04) = 0.24+0.30+0.15 = 0.69
	// CCC: 0.4*0.5 + 0.4*0.50 + 0.2*(1-0.04/0.04) = 0.20+0.20+0.00 = 0.40
	assert.Equal(t, "BBB", out[0].TickerB)
	assert.InDelta(t, 0.69, out[0].Score, 1e-12)
	assert.Equal(t, "CCC", out[1].TickerB)
	assert.InDelta(t, 0.40, out[1].Score, 1e-12)
}

func TestRank_TieBrokenByCorrelationMagnitude(t *testing.T) {
	// 두 후보 모두 p=0 → 유의성 항 1, 점수 동률
	// X: 0.4*0.8 + 0.4*0.6 + 0.2 = 0.76
	// Y: 0.4*0.6 + 0.4*0.8 + 0.2 = 0.76
	corrs := []contracts.CorrelationRecord{
		corrRec("TRG", "YYY", 1, 0.6, 0),
		corrRec("TRG", "XXX", 1, -0.8, 0),
	}
	backtests := []contracts.BacktestRecord{
		btRec("TRG", "XXX", 1, contracts.KnownHitRate(0.6)),
		btRec("TRG", "YYY", 1, contracts.KnownHitRate(0.8)),
	}

	ranker := NewRanker(logger.Nop())
	out := ranker.Rank("TRG", corrs, backtests, 10)

	require.Len(t, out, 2)
	assert.InDelta(t, out[0].Score, out[1].Score, 1e-12)
	assert.Equal(t, "XXX", out[0].TickerB, "equal score breaks on |correlation| desc")
}

func TestRank_FinalTieBreaksAreDeterministic(t *testing.T) {
	// 통계가 전부 동일하면 ticker_b asc, 그 다음 lag asc
	corrs := []contracts.CorrelationRecord{
		corrRec("TRG", "BBB", 3, 0.5, 0.02),
		corrRec("TRG", "AAA", 1, 0.5, 0.02),
		corrRec("TRG", "BBB", 1, 0.5, 0.02),
	}

	ranker := NewRanker(logger.Nop())
	out := ranker.Rank("TRG", corrs, nil, 10)

	require.Len(t, out, 3)
	assert.Equal(t, "AAA", out[0].TickerB)
	assert.Equal(t, "BBB", out[1].TickerB)
	assert.Equal(t, 1, out[1].Lag)
	assert.Equal(t, "BBB", out[2].TickerB)
	assert.Equal(t, 3, out[2].Lag)
}

func TestRank_SingleCandidateNormalization(t *testing.T) {
	corrs := []contracts.CorrelationRecord{
		corrRec("TRG", "BBB", 1, 0.5, 0.04),
	}
	backtests := []contracts.BacktestRecord{
		btRec("TRG", "BBB", 1, contracts.KnownHitRate(0.5)),
	}

	ranker := NewRanker(logger.Nop())
	out := ranker.Rank("TRG", corrs, backtests, 10)

	// 후보가 하나뿐이면 유의성 항은 1로 정의 (0/0 회피)
	require.Len(t, out, 1)
	assert.InDelta(t, 0.4*0.5+0.4*0.5+0.2*1, out[0].Score, 1e-12)
}

func TestRank_NoDataHitRateScoresAsZero(t *testing.T) {
	corrs := []contracts.CorrelationRecord{
		corrRec("TRG", "BBB", 1, 0.5, 0),
	}
	backtests := []contracts.BacktestRecord{
		btRec("TRG", "BBB", 1, contracts.NoHitRate()),
	}

	ranker := NewRanker(logger.Nop())
	out := ranker.Rank("TRG", corrs, backtests, 10)

	require.Len(t, out, 1)
	assert.False(t, out[0].HitRate.Valid, "NoData survives into the candidate")
	assert.InDelta(t, 0.4*0.5+0.2, out[0].Score, 1e-12)
}

func TestRank_NoCandidates(t *testing.T) {
	ranker := NewRanker(logger.Nop())
	out := ranker.Rank("TRG", []contracts.CorrelationRecord{
		corrRec("OTH", "BBB", 1, 0.9, 0.001),
	}, nil, 10)

	assert.Empty(t, out, "zero candidates is a valid outcome")
}

func TestRank_TopNTruncation(t *testing.T) {
	corrs := []contracts.CorrelationRecord{
		corrRec("TRG", "AAA", 1, 0.9, 0.001),
		corrRec("TRG", "BBB", 1, 0.8, 0.002),
		corrRec("TRG", "CCC", 1, 0.7, 0.003),
	}

	ranker := NewRanker(logger.Nop())
	out := ranker.Rank("TRG", corrs, nil, 2)

	require.Len(t, out, 2)
	assert.Equal(t, "AAA", out[0].TickerB)
	assert.Equal(t, "BBB", out[1].TickerB)
}
