package batch

import (
	"github.com/wonny/lagcorr/internal/contracts"
	"github.com/wonny/lagcorr/pkg/config"
)

// ParamsFromConfig converts startup configuration into the explicit
// parameter record the engines consume. 엔진은 설정을 직접 읽지 않는다.
func ParamsFromConfig(cfg config.AnalysisConfig) contracts.Params {
	return contracts.Params{
		ReturnThreshold:   cfg.ReturnThreshold,
		VolumeThreshold:   cfg.VolumeThreshold,
		MinCorrelation:    cfg.MinCorrelation,
		SignificanceLevel: cfg.SignificanceLevel,
		MaxLagDaily:       cfg.MaxLagDaily,
		MaxLagWeekly:      cfg.MaxLagWeekly,
		MaxLagMonthly:     cfg.MaxLagMonthly,
		TopN:              cfg.TopN,
		Workers:           cfg.Workers,
	}
}
