package contracts

import (
	"math"
	"time"
)

// Timeframe 분석 주기
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// Timeframes lists all supported timeframes in scan order.
var Timeframes = []Timeframe{TimeframeDaily, TimeframeWeekly, TimeframeMonthly}

// Valid reports whether the timeframe is one of daily/weekly/monthly.
func (tf Timeframe) Valid() bool {
	switch tf {
	case TimeframeDaily, TimeframeWeekly, TimeframeMonthly:
		return true
	}
	return false
}

// ReturnSeries is a date-ascending sequence of market-adjusted (excess) returns
// for one ticker and timeframe. Built by the external return-calculation
// collaborator; the engines consume it read-only.
// ⭐ SSOT: 수익률 시계열 데이터 전달은 이 타입으로만
type ReturnSeries struct {
	Ticker    string
	Timeframe Timeframe
	Dates     []time.Time
	Values    []float64
}

// Len returns the number of observations.
func (s *ReturnSeries) Len() int {
	return len(s.Dates)
}

// Validate rejects malformed series before any statistics run: length mismatch,
// non-monotonic or duplicate dates, NaN/Inf return values.
func (s *ReturnSeries) Validate() error {
	if len(s.Dates) != len(s.Values) {
		return &InputError{Ticker: s.Ticker, Reason: "dates/values length mismatch"}
	}

	for i := range s.Dates {
		if i > 0 && !s.Dates[i].After(s.Dates[i-1]) {
			return &InputError{Ticker: s.Ticker, Date: s.Dates[i], Reason: "dates not strictly increasing"}
		}
		if math.IsNaN(s.Values[i]) || math.IsInf(s.Values[i], 0) {
			return &InputError{Ticker: s.Ticker, Date: s.Dates[i], Reason: "return value is not finite"}
		}
	}

	return nil
}

// AlignedPair holds two return series joined on their common dates.
type AlignedPair struct {
	Dates []time.Time
	A     []float64
	B     []float64
}

// Len returns the number of shared observations.
func (p *AlignedPair) Len() int {
	return len(p.Dates)
}

// Intersect aligns two series on their date intersection.
// 양쪽 모두 날짜 오름차순이므로 two-pointer 머지로 O(n+m).
func (s *ReturnSeries) Intersect(other *ReturnSeries) AlignedPair {
	var pair AlignedPair

	i, j := 0, 0
	for i < len(s.Dates) && j < len(other.Dates) {
		switch {
		case s.Dates[i].Before(other.Dates[j]):
			i++
		case s.Dates[i].After(other.Dates[j]):
			j++
		default:
			pair.Dates = append(pair.Dates, s.Dates[i])
			pair.A = append(pair.A, s.Values[i])
			pair.B = append(pair.B, other.Values[j])
			i++
			j++
		}
	}

	return pair
}
