package correlation

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonny/lagcorr/internal/contracts"
)

// pearson computes the Pearson correlation of two equal-length samples.
// 분산이 0이면 상관이 정의되지 않으므로 ErrUndefinedStatistic.
func pearson(x, y []float64) (float64, error) {
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, contracts.ErrUndefinedStatistic
	}

	// 부동소수점 오차로 [-1,1]을 벗어날 수 있음
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}

	return r, nil
}

// pValue returns the two-sided p-value for r under H0: rho=0, using the
// t-distribution with n-2 degrees of freedom and
// t = r*sqrt((n-2)/(1-r^2)). Matches scipy.stats.pearsonr.
func pValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	if r >= 1 || r <= -1 {
		return 0
	}

	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}

	return 2 * dist.CDF(-math.Abs(t))
}

// laggedSample builds the lag-shifted sample from an aligned pair:
// x = A[0, n-lag), y = B[lag, n). "A의 오늘 수익률이 lag 기간 뒤 B를
// 예측하는가"를 인코딩한다. 정렬 후 샘플이 lag+MinSampleSize 미만이면
// ErrInsufficientData.
func laggedSample(pair contracts.AlignedPair, lag int) (x, y []float64, err error) {
	n := pair.Len()
	if n < lag+contracts.MinSampleSize {
		return nil, nil, contracts.ErrInsufficientData
	}
	return pair.A[:n-lag], pair.B[lag:], nil
}
