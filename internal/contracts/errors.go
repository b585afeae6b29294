package contracts

import (
	"errors"
	"fmt"
	"time"
)

// InputError marks a malformed input series (non-monotonic dates, NaN values).
// Fatal for the affected ticker only: the scan logs it and continues.
type InputError struct {
	Ticker string
	Date   time.Time
	Reason string
}

func (e *InputError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("invalid input for %s: %s", e.Ticker, e.Reason)
	}
	return fmt.Sprintf("invalid input for %s at %s: %s", e.Ticker, e.Date.Format("2006-01-02"), e.Reason)
}

// MissingSeriesError marks a backtest request for a ticker with no return
// series. Surfaced to the caller; the caller decides skip vs abort.
type MissingSeriesError struct {
	Ticker string
}

func (e *MissingSeriesError) Error() string {
	return fmt.Sprintf("no return series for %s", e.Ticker)
}

var (
	// ErrInsufficientData: 정렬 후 샘플이 최소 기준 미달. "관계 없음"으로
	// 취급하고 결과에서 조용히 제외한다.
	ErrInsufficientData = errors.New("insufficient overlapping data")

	// ErrUndefinedStatistic: 정렬 구간에서 분산이 0이라 상관이 정의되지 않음.
	// correlation=0 으로 보고하지 않고 pair/lag를 제외한다.
	ErrUndefinedStatistic = errors.New("correlation undefined for zero-variance series")
)
