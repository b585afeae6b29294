package correlation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wonny/lagcorr/internal/contracts"
)

// Engine computes lagged Pearson correlations over all ordered ticker pairs.
// ⭐ SSOT: 상관 스캔은 이 엔진에서만. 입력과 파라미터의 순수 함수이며
// 동일 입력이면 비트 단위로 동일한 결과를 낸다.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new correlation engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "correlation.engine").Logger(),
	}
}

// LagProfile is one lag's unfiltered statistics for a single ordered pair.
type LagProfile struct {
	Lag         int                 `json:"lag"`
	Correlation float64             `json:"correlation"`
	PValue      float64             `json:"p_value"`
	Direction   contracts.Direction `json:"direction"`
}

// ScanAll computes CorrelationRecords for every ordered pair (a≠b) and every
// lag in [1, maxLag], keeping only relationships with |r| >= min_correlation
// and p < significance/(N*(N-1)*maxLag).
//
// Bonferroni 분모는 정렬 제외와 무관하게 전체 유니버스 크기로 한 번만
// 계산한다 (보수적 보정, 기존 결과 재현을 위해 고정).
func (e *Engine) ScanAll(
	ctx context.Context,
	series map[string]*contracts.ReturnSeries,
	timeframe contracts.Timeframe,
	params contracts.Params,
) ([]contracts.CorrelationRecord, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if !timeframe.Valid() {
		return nil, fmt.Errorf("invalid timeframe %q", timeframe)
	}

	maxLag := params.MaxLag(timeframe)

	// 전체 유니버스 크기 N. Bonferroni 분모는 여기서 확정
	n := len(series)
	nTests := n * (n - 1) * maxLag
	if nTests == 0 {
		return nil, nil
	}
	alphaCorrected := params.SignificanceLevel / float64(nTests)

	// Validate input up front: malformed series are logged and excluded,
	// the scan itself continues.
	tickers := make([]string, 0, n)
	for ticker, s := range series {
		if err := s.Validate(); err != nil {
			e.log.Warn().Err(err).Str("ticker", ticker).Msg("series rejected at input validation")
			continue
		}
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	if len(tickers) == 0 {
		return nil, nil
	}

	e.log.Info().
		Int("tickers", len(tickers)).
		Str("timeframe", string(timeframe)).
		Int("max_lag", maxLag).
		Int("n_tests", nTests).
		Float64("alpha_corrected", alphaCorrected).
		Msg("correlation scan started")

	// Partition the ticker_a space across workers. Each worker owns its
	// chunk and writes to a private buffer; buffers are concatenated in
	// partition order after all workers finish. No shared mutable state.
	workers := params.Workers
	if workers > len(tickers) {
		workers = len(tickers)
	}
	if workers < 1 {
		workers = 1
	}

	chunks := partition(len(tickers), workers)
	buffers := make([][]contracts.CorrelationRecord, len(chunks))

	var wg sync.WaitGroup
	for w, chunk := range chunks {
		wg.Add(1)
		go func(w int, lo, hi int) {
			defer wg.Done()
			buffers[w] = e.scanChunk(ctx, tickers, lo, hi, series, timeframe, maxLag, alphaCorrected, params.MinCorrelation)
		}(w, chunk[0], chunk[1])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []contracts.CorrelationRecord
	for _, buf := range buffers {
		records = append(records, buf...)
	}

	e.log.Info().
		Int("significant", len(records)).
		Str("timeframe", string(timeframe)).
		Msg("correlation scan completed")

	return records, nil
}

// scanChunk scans ticker_a indices [lo, hi) against the full ticker_b space.
func (e *Engine) scanChunk(
	ctx context.Context,
	tickers []string,
	lo, hi int,
	series map[string]*contracts.ReturnSeries,
	timeframe contracts.Timeframe,
	maxLag int,
	alphaCorrected float64,
	minCorrelation float64,
) []contracts.CorrelationRecord {
	var out []contracts.CorrelationRecord

	for i := lo; i < hi; i++ {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		tickerA := tickers[i]
		a := series[tickerA]

		for _, tickerB := range tickers {
			if tickerB == tickerA {
				continue
			}
			b := series[tickerB]

			pair := a.Intersect(b)

			for lag := 1; lag <= maxLag; lag++ {
				// 샘플 부족 → 통계적 검정력 없음, 조용히 제외
				x, y, err := laggedSample(pair, lag)
				if err != nil {
					continue
				}

				r, err := pearson(x, y)
				if err != nil {
					// zero variance: correlation undefined, not zero
					continue
				}

				if math.Abs(r) < minCorrelation {
					continue
				}

				p := pValue(r, len(x))
				if p >= alphaCorrected {
					continue
				}

				out = append(out, contracts.CorrelationRecord{
					TickerA:     tickerA,
					TickerB:     tickerB,
					Timeframe:   timeframe,
					Lag:         lag,
					Correlation: r,
					PValue:      p,
					Direction:   contracts.DirectionOf(r),
				})
			}
		}
	}

	return out
}

// SinglePair computes the full, unfiltered lag profile for one ordered pair.
// 대화형 조회용: 임계값 필터 없이 모든 lag의 통계를 돌려준다.
func (e *Engine) SinglePair(a, b *contracts.ReturnSeries, maxLag int) ([]LagProfile, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	pair := a.Intersect(b)

	var profiles []LagProfile
	for lag := 1; lag <= maxLag; lag++ {
		x, y, err := laggedSample(pair, lag)
		if err != nil {
			continue
		}

		r, err := pearson(x, y)
		if err != nil {
			continue
		}

		profiles = append(profiles, LagProfile{
			Lag:         lag,
			Correlation: r,
			PValue:      pValue(r, len(x)),
			Direction:   contracts.DirectionOf(r),
		})
	}

	return profiles, nil
}

// DetectCircular finds pairs where A→B and B→A are both at or above
// min_correlation at their respective strongest lags.
func (e *Engine) DetectCircular(records []contracts.CorrelationRecord, minCorrelation float64) []contracts.CircularCorrelation {
	type pairKey struct{ a, b string }

	// 쌍별 최강 lag만 남긴다
	best := make(map[pairKey]contracts.CorrelationRecord)
	for _, rec := range records {
		key := pairKey{rec.TickerA, rec.TickerB}
		if cur, ok := best[key]; !ok || math.Abs(rec.Correlation) > math.Abs(cur.Correlation) {
			best[key] = rec
		}
	}

	var circular []contracts.CircularCorrelation
	for key, ab := range best {
		if key.a >= key.b {
			continue // 무순서 쌍당 한 번만
		}
		ba, ok := best[pairKey{key.b, key.a}]
		if !ok {
			continue
		}
		if math.Abs(ab.Correlation) < minCorrelation || math.Abs(ba.Correlation) < minCorrelation {
			continue
		}

		circular = append(circular, contracts.CircularCorrelation{
			TickerA:       key.a,
			TickerB:       key.b,
			Timeframe:     ab.Timeframe,
			LagAB:         ab.Lag,
			LagBA:         ba.Lag,
			CorrelationAB: ab.Correlation,
			CorrelationBA: ba.Correlation,
		})
	}

	sort.Slice(circular, func(i, j int) bool {
		if circular[i].TickerA != circular[j].TickerA {
			return circular[i].TickerA < circular[j].TickerA
		}
		return circular[i].TickerB < circular[j].TickerB
	})

	return circular
}

// partition splits n items into k contiguous [lo, hi) index ranges.
func partition(n, k int) [][2]int {
	if k > n {
		k = n
	}
	chunks := make([][2]int, 0, k)
	base := n / k
	rem := n % k

	lo := 0
	for w := 0; w < k; w++ {
		size := base
		if w < rem {
			size++
		}
		chunks = append(chunks, [2]int{lo, lo + size})
		lo += size
	}

	return chunks
}
