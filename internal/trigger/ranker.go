package trigger

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/wonny/lagcorr/internal/contracts"
)

// Score weights. 고정 공식, 설정 불가.
// score = 0.4*|correlation| + 0.4*hit_rate_or_zero + 0.2*(1 - p/max_p)
const (
	weightCorrelation  = 0.4
	weightHitRate      = 0.4
	weightSignificance = 0.2
)

// Ranker orders candidate response tickers for a triggered ticker.
type Ranker struct {
	log zerolog.Logger
}

// NewRanker 새 랭커 생성
func NewRanker(log zerolog.Logger) *Ranker {
	return &Ranker{
		log: log.With().Str("component", "trigger.ranker").Logger(),
	}
}

// Rank scores and orders candidates for one trigger ticker. Zero candidates
// is a valid outcome, not an error.
//
// p-value 정규화 분모(max_p)는 트리거 종목의 현재 후보 집합에서 호출 시마다
// 다시 계산한다 (전역 상수가 아니다). 후보가 하나뿐이거나 모든 p가 0이면
// 정규화 항은 1로 정의한다.
func (r *Ranker) Rank(
	triggerTicker string,
	correlations []contracts.CorrelationRecord,
	backtests []contracts.BacktestRecord,
	topN int,
) []contracts.Candidate {
	type relKey struct {
		tickerB string
		lag     int
	}

	hitRates := make(map[relKey]contracts.HitRate, len(backtests))
	for _, bt := range backtests {
		if bt.TickerA != triggerTicker {
			continue
		}
		hitRates[relKey{bt.TickerB, bt.Lag}] = bt.HitRate
	}

	var candidates []contracts.Candidate
	maxP := 0.0
	for _, rec := range correlations {
		if rec.TickerA != triggerTicker {
			continue
		}

		// 백테스트 증거가 없으면 NoData로 두고 점수에서 0으로 대체된다
		hitRate := hitRates[relKey{rec.TickerB, rec.Lag}]

		candidates = append(candidates, contracts.Candidate{
			TickerB:     rec.TickerB,
			Lag:         rec.Lag,
			Correlation: rec.Correlation,
			PValue:      rec.PValue,
			HitRate:     hitRate,
			Direction:   rec.Direction,
		})
		if rec.PValue > maxP {
			maxP = rec.PValue
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	for i := range candidates {
		c := &candidates[i]

		significance := 1.0
		if len(candidates) > 1 && maxP > 0 {
			significance = 1 - c.PValue/maxP
		}

		c.Score = weightCorrelation*math.Abs(c.Correlation) +
			weightHitRate*c.HitRate.OrZero() +
			weightSignificance*significance
	}

	// score desc → |correlation| desc → p asc → ticker_b asc → lag asc
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if absA, absB := math.Abs(a.Correlation), math.Abs(b.Correlation); absA != absB {
			return absA > absB
		}
		if a.PValue != b.PValue {
			return a.PValue < b.PValue
		}
		if a.TickerB != b.TickerB {
			return a.TickerB < b.TickerB
		}
		return a.Lag < b.Lag
	})

	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}

	return candidates
}
