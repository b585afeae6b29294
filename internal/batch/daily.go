package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/lagcorr/internal/cache"
	"github.com/wonny/lagcorr/internal/contracts"
	"github.com/wonny/lagcorr/internal/returns"
	"github.com/wonny/lagcorr/internal/trigger"
)

// DailyUpdateJob detects and persists trigger events after the close.
type DailyUpdateJob struct {
	returns     *returns.Repository
	detector    *trigger.Detector
	triggerRepo *trigger.Repository
	cache       *cache.Cache
	params      contracts.Params
	log         zerolog.Logger
}

// NewDailyUpdateJob wires the post-close trigger pipeline.
func NewDailyUpdateJob(
	returnsRepo *returns.Repository,
	detector *trigger.Detector,
	triggerRepo *trigger.Repository,
	c *cache.Cache,
	params contracts.Params,
	log zerolog.Logger,
) *DailyUpdateJob {
	return &DailyUpdateJob{
		returns:     returnsRepo,
		detector:    detector,
		triggerRepo: triggerRepo,
		cache:       c,
		params:      params,
		log:         log.With().Str("component", "batch.daily").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *DailyUpdateJob) Name() string { return "daily_trigger_update" }

// Schedule implements scheduler.Job. Weekdays 18:10, after returns are
// ingested upstream.
func (j *DailyUpdateJob) Schedule() string { return "0 10 18 * * MON-FRI" }

// triggerRetention bounds the daily_triggers table. Older rows only serve
// ad-hoc forensics and are prunable.
const triggerRetention = 180 * 24 * time.Hour

// Run implements scheduler.Job.
func (j *DailyUpdateJob) Run(ctx context.Context) error {
	for _, tf := range contracts.Timeframes {
		if err := j.RunTimeframe(ctx, tf); err != nil {
			return fmt.Errorf("daily update %s: %w", tf, err)
		}
	}

	cutoff := time.Now().Add(-triggerRetention)
	pruned, err := j.triggerRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		// 보존 정리는 다음 실행에서 다시 시도하면 된다
		j.log.Warn().Err(err).Msg("trigger retention prune failed")
	} else if pruned > 0 {
		j.log.Info().Int64("pruned", pruned).Msg("old trigger events pruned")
	}

	return nil
}

// RunTimeframe detects triggers on the latest available date for one
// timeframe and persists them.
func (j *DailyUpdateJob) RunTimeframe(ctx context.Context, tf contracts.Timeframe) error {
	date, err := j.returns.LatestDate(ctx, tf)
	if err != nil {
		return err
	}

	rets, err := j.returns.ReturnsOn(ctx, date, tf)
	if err != nil {
		return err
	}
	if len(rets) == 0 {
		j.log.Warn().Str("timeframe", string(tf)).Msg("no returns on latest date, skipping")
		return nil
	}

	vols, err := j.returns.VolumeSnapshots(ctx, date)
	if err != nil {
		return err
	}

	events := j.detector.Detect(rets, vols, date, tf, j.params)

	if err := j.triggerRepo.SaveAll(ctx, events); err != nil {
		return err
	}
	j.cache.SetTriggers(ctx, date, tf, events)

	j.log.Info().
		Str("timeframe", string(tf)).
		Str("date", date.Format("2006-01-02")).
		Int("triggers", len(events)).
		Msg("daily trigger update completed")

	return nil
}
