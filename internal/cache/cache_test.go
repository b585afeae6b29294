package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/lagcorr/internal/contracts"
	"github.com/wonny/lagcorr/pkg/config"
	"github.com/wonny/lagcorr/pkg/logger"
	"github.com/wonny/lagcorr/pkg/redis"
)

func TestCache_Disabled(t *testing.T) {
	rc, err := redis.New(&config.Config{
		Redis: config.RedisConfig{Enabled: false},
	})
	require.NoError(t, err)

	c := New(rc, config.RedisConfig{
		CandidateTTL: time.Hour,
		TriggerTTL:   24 * time.Hour,
	}, logger.Nop())

	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	// Redis 비활성화 시 모든 조회는 miss, 쓰기는 no-op
	_, ok := c.GetCandidates(ctx, "AAPL", contracts.TimeframeDaily)
	assert.False(t, ok)

	c.SetCandidates(ctx, "AAPL", contracts.TimeframeDaily, []contracts.Candidate{{TickerB: "MSFT"}})
	_, ok = c.GetCandidates(ctx, "AAPL", contracts.TimeframeDaily)
	assert.False(t, ok)

	_, ok = c.GetTriggers(ctx, date, contracts.TimeframeDaily)
	assert.False(t, ok)

	c.SetTriggers(ctx, date, contracts.TimeframeDaily, nil)
	c.Invalidate(ctx, contracts.TimeframeDaily)
}
