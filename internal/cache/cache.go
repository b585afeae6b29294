package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wonny/lagcorr/internal/contracts"
	"github.com/wonny/lagcorr/pkg/config"
	"github.com/wonny/lagcorr/pkg/redis"
)

// Cache is a Redis-backed read-through cache for candidate lists and daily
// trigger snapshots. 비활성화 시에도 동일한 API를 유지한다: Get은 항상
// miss, Set/Invalidate는 no-op.
type Cache struct {
	client       *redis.Client
	candidateTTL time.Duration
	triggerTTL   time.Duration
	log          zerolog.Logger
}

// New wraps the shared Redis client with the analysis TTL policy.
func New(client *redis.Client, cfg config.RedisConfig, log zerolog.Logger) *Cache {
	return &Cache{
		client:       client,
		candidateTTL: cfg.CandidateTTL,
		triggerTTL:   cfg.TriggerTTL,
		log:          log.With().Str("component", "cache").Logger(),
	}
}

func candidateKey(ticker string, timeframe contracts.Timeframe) string {
	return fmt.Sprintf("lagcorr:candidates:%s:%s", timeframe, ticker)
}

func triggerKey(date time.Time, timeframe contracts.Timeframe) string {
	return fmt.Sprintf("lagcorr:triggers:%s:%s", timeframe, date.Format("2006-01-02"))
}

// GetCandidates returns the cached candidate list for a trigger ticker.
// 캐시 오류는 miss로 강등한다. 캐시 장애가 분석을 막으면 안 된다.
func (c *Cache) GetCandidates(ctx context.Context, ticker string, timeframe contracts.Timeframe) ([]contracts.Candidate, bool) {
	if !c.client.Enabled() {
		return nil, false
	}

	data, err := c.client.Redis().Get(ctx, candidateKey(ticker, timeframe)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("candidate cache read failed")
		return nil, false
	}

	var candidates []contracts.Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("candidate cache decode failed")
		return nil, false
	}
	return candidates, true
}

// SetCandidates caches a candidate list with the configured TTL.
func (c *Cache) SetCandidates(ctx context.Context, ticker string, timeframe contracts.Timeframe, candidates []contracts.Candidate) {
	if !c.client.Enabled() {
		return
	}

	data, err := json.Marshal(candidates)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("candidate cache encode failed")
		return
	}
	if err := c.client.Redis().Set(ctx, candidateKey(ticker, timeframe), data, c.candidateTTL).Err(); err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("candidate cache write failed")
	}
}

// GetTriggers returns the cached trigger events for one date.
func (c *Cache) GetTriggers(ctx context.Context, date time.Time, timeframe contracts.Timeframe) ([]contracts.TriggerEvent, bool) {
	if !c.client.Enabled() {
		return nil, false
	}

	data, err := c.client.Redis().Get(ctx, triggerKey(date, timeframe)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("trigger cache read failed")
		return nil, false
	}

	var events []contracts.TriggerEvent
	if err := json.Unmarshal(data, &events); err != nil {
		c.log.Warn().Err(err).Msg("trigger cache decode failed")
		return nil, false
	}
	return events, true
}

// SetTriggers caches the day's trigger events.
func (c *Cache) SetTriggers(ctx context.Context, date time.Time, timeframe contracts.Timeframe, events []contracts.TriggerEvent) {
	if !c.client.Enabled() {
		return
	}

	data, err := json.Marshal(events)
	if err != nil {
		c.log.Warn().Err(err).Msg("trigger cache encode failed")
		return
	}
	if err := c.client.Redis().Set(ctx, triggerKey(date, timeframe), data, c.triggerTTL).Err(); err != nil {
		c.log.Warn().Err(err).Msg("trigger cache write failed")
	}
}

// Invalidate drops every cached entry for a timeframe. Called after a full
// recalculation so stale candidate lists never outlive new statistics.
func (c *Cache) Invalidate(ctx context.Context, timeframe contracts.Timeframe) {
	if !c.client.Enabled() {
		return
	}

	patterns := []string{
		fmt.Sprintf("lagcorr:candidates:%s:*", timeframe),
		fmt.Sprintf("lagcorr:triggers:%s:*", timeframe),
	}

	rdb := c.client.Redis()
	deleted := 0
	for _, pattern := range patterns {
		iter := rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := rdb.Del(ctx, iter.Val()).Err(); err != nil {
				c.log.Warn().Err(err).Str("key", iter.Val()).Msg("cache invalidation failed")
				continue
			}
			deleted++
		}
		if err := iter.Err(); err != nil {
			c.log.Warn().Err(err).Str("pattern", pattern).Msg("cache scan failed")
		}
	}

	c.log.Info().Str("timeframe", string(timeframe)).Int("deleted", deleted).Msg("cache invalidated")
}
