package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/lagcorr/pkg/logger"
)

// stubJob is a minimal Job for scheduler tests.
type stubJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func newTestScheduler() *Scheduler {
	s := New(logger.Nop())
	// 실패 테스트가 재시도 대기로 느려지지 않게 한다
	s.maxRetries = 0
	s.retryDelay = 0
	return s
}

func TestAddJob_DuplicateRejected(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "recalc", schedule: "0 0 2 * * SAT"}

	require.NoError(t, s.AddJob(job))
	err := s.AddJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "broken", schedule: "not a cron expr"}

	require.Error(t, s.AddJob(job))
	assert.Empty(t, s.GetAllJobs())
}

func TestRunJob_UnknownJob(t *testing.T) {
	s := newTestScheduler()

	err := s.RunJob("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunJob_RecordsHistoryAndStats(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "daily_trigger_update", schedule: "0 10 18 * * MON-FRI"}
	require.NoError(t, s.AddJob(job))

	// 동기 실행 경로를 직접 호출해 이력 기록을 검증한다
	s.runJob(job)
	s.runJob(job)

	assert.Equal(t, 2, job.runs)
	assert.Equal(t, []string{"daily_trigger_update"}, s.GetAllJobs())

	history, err := s.GetJobHistory("daily_trigger_update")
	require.NoError(t, err)
	require.Len(t, history.Results, 2)
	assert.True(t, history.Results[0].Success)
	assert.Equal(t, 1.0, history.GetSuccessRate())

	stats := s.GetJobStats()
	require.Contains(t, stats, "daily_trigger_update")
	st := stats["daily_trigger_update"]
	assert.Equal(t, "0 10 18 * * MON-FRI", st.Schedule)
	assert.Equal(t, 2, st.TotalRuns)
	assert.Equal(t, 2, st.SuccessCount)
	assert.Equal(t, 0, st.FailureCount)
	require.NotNil(t, st.LastSuccess)
	assert.Nil(t, st.LastFailure)
}

func TestRunJob_FailureAfterRetries(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{
		name:     "correlation_recalc",
		schedule: "0 0 2 * * SAT",
		err:      errors.New("load series: connection refused"),
	}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	history, err := s.GetJobHistory("correlation_recalc")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.Contains(t, history.Results[0].Error, "connection refused")

	st := s.GetJobStats()["correlation_recalc"]
	assert.Equal(t, 1, st.FailureCount)
	assert.Equal(t, 0.0, st.SuccessRate)
	require.NotNil(t, st.LastFailure)
	assert.Nil(t, st.LastSuccess)
}

func TestGetJobHistory_UnknownJob(t *testing.T) {
	s := newTestScheduler()

	_, err := s.GetJobHistory("missing")
	require.Error(t, err)
}

func TestJobHistory_KeepsLast100(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{
			JobName:   "recalc",
			StartTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
			Success:   i%2 == 0,
			Error:     fmt.Sprintf("run %d", i),
		})
	}

	require.Len(t, h.Results, 100)
	// 가장 오래된 50개가 버려졌다
	assert.Equal(t, "run 50", h.Results[0].Error)

	latest := h.GetLatestResults(3)
	require.Len(t, latest, 3)
	assert.Equal(t, "run 149", latest[2].Error)

	// 50..149 중 홀수 인덱스 50개가 실패
	assert.Len(t, h.GetFailedResults(), 50)
	assert.Equal(t, 0.5, h.GetSuccessRate())
}

func TestJobHistory_Empty(t *testing.T) {
	h := &JobHistory{}

	assert.Empty(t, h.GetLatestResults(5))
	assert.Empty(t, h.GetFailedResults())
	assert.Equal(t, 0.0, h.GetSuccessRate())
}
