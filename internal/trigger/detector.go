package trigger

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/lagcorr/internal/contracts"
)

// Detector flags tickers whose return moved abnormally today on elevated
// volume.
// ⭐ SSOT: 트리거 판정은 여기서만
type Detector struct {
	log zerolog.Logger
}

// NewDetector 새 감지기 생성
func NewDetector(log zerolog.Logger) *Detector {
	return &Detector{
		log: log.With().Str("component", "trigger.detector").Logger(),
	}
}

// Detect returns today's trigger events, sorted by ticker.
//
// 조건: |수익률| >= return_threshold AND 당일거래량/20일평균 >= volume_threshold.
// 수익률이 없거나, 거래량 스냅샷이 없거나, 평균 거래량이 0인 종목은
// "트리거 아님"이 아니라 판정 자체에서 제외한다.
func (d *Detector) Detect(
	returns map[string]float64,
	volumes map[string]contracts.VolumeSnapshot,
	date time.Time,
	timeframe contracts.Timeframe,
	params contracts.Params,
) []contracts.TriggerEvent {
	var events []contracts.TriggerEvent

	excluded := 0
	for ticker, ret := range returns {
		if math.IsNaN(ret) {
			excluded++
			continue
		}

		vol, ok := volumes[ticker]
		if !ok || vol.AvgVolume20 <= 0 {
			excluded++
			continue
		}

		if math.Abs(ret) < params.ReturnThreshold {
			continue
		}

		ratio := vol.TodayVolume / vol.AvgVolume20
		if ratio < params.VolumeThreshold {
			continue
		}

		events = append(events, contracts.TriggerEvent{
			Ticker:      ticker,
			Date:        date,
			Timeframe:   timeframe,
			ReturnValue: ret,
			VolumeRatio: ratio,
		})
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Ticker < events[j].Ticker
	})

	d.log.Info().
		Str("timeframe", string(timeframe)).
		Str("date", date.Format("2006-01-02")).
		Int("universe", len(returns)).
		Int("excluded", excluded).
		Int("triggered", len(events)).
		Msg("trigger detection completed")

	return events
}
