package contracts

import (
	"errors"
	"math"
	"testing"
	"time"
)

func d(day int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
}

func TestReturnSeries_Validate(t *testing.T) {
	tests := []struct {
		name    string
		series  ReturnSeries
		wantErr bool
	}{
		{
			name: "valid series",
			series: ReturnSeries{
				Ticker: "7203",
				Dates:  []time.Time{d(0), d(1), d(2)},
				Values: []float64{0.01, -0.02, 0.005},
			},
		},
		{
			name: "valid with gaps",
			series: ReturnSeries{
				Ticker: "7203",
				Dates:  []time.Time{d(0), d(3), d(10)},
				Values: []float64{0.01, -0.02, 0.005},
			},
		},
		{
			name: "duplicate date",
			series: ReturnSeries{
				Ticker: "7203",
				Dates:  []time.Time{d(0), d(1), d(1)},
				Values: []float64{0.01, -0.02, 0.005},
			},
			wantErr: true,
		},
		{
			name: "descending date",
			series: ReturnSeries{
				Ticker: "7203",
				Dates:  []time.Time{d(2), d(1)},
				Values: []float64{0.01, -0.02},
			},
			wantErr: true,
		},
		{
			name: "NaN value",
			series: ReturnSeries{
				Ticker: "7203",
				Dates:  []time.Time{d(0), d(1)},
				Values: []float64{0.01, math.NaN()},
			},
			wantErr: true,
		},
		{
			name: "length mismatch",
			series: ReturnSeries{
				Ticker: "7203",
				Dates:  []time.Time{d(0), d(1)},
				Values: []float64{0.01},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var inputErr *InputError
				if !errors.As(err, &inputErr) {
					t.Fatalf("expected *InputError, got %T", err)
				}
				if inputErr.Ticker != "7203" {
					t.Errorf("error should name the offending ticker, got %q", inputErr.Ticker)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestReturnSeries_Intersect(t *testing.T) {
	a := ReturnSeries{
		Ticker: "A",
		Dates:  []time.Time{d(0), d(1), d(2), d(4), d(5)},
		Values: []float64{1, 2, 3, 4, 5},
	}
	b := ReturnSeries{
		Ticker: "B",
		Dates:  []time.Time{d(1), d(2), d(3), d(5), d(6)},
		Values: []float64{10, 20, 30, 50, 60},
	}

	pair := a.Intersect(&b)

	if pair.Len() != 3 {
		t.Fatalf("expected 3 shared dates, got %d", pair.Len())
	}
	wantDates := []time.Time{d(1), d(2), d(5)}
	wantA := []float64{2, 3, 5}
	wantB := []float64{10, 20, 50}
	for i := range wantDates {
		if !pair.Dates[i].Equal(wantDates[i]) {
			t.Errorf("date[%d] = %v, want %v", i, pair.Dates[i], wantDates[i])
		}
		if pair.A[i] != wantA[i] {
			t.Errorf("A[%d] = %v, want %v", i, pair.A[i], wantA[i])
		}
		if pair.B[i] != wantB[i] {
			t.Errorf("B[%d] = %v, want %v", i, pair.B[i], wantB[i])
		}
	}
}

func TestReturnSeries_Intersect_NoOverlap(t *testing.T) {
	a := ReturnSeries{Dates: []time.Time{d(0), d(1)}, Values: []float64{1, 2}}
	b := ReturnSeries{Dates: []time.Time{d(5), d(6)}, Values: []float64{3, 4}}

	if pair := a.Intersect(&b); pair.Len() != 0 {
		t.Errorf("expected empty intersection, got %d", pair.Len())
	}
}
