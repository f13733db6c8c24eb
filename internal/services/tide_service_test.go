package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfcast/internal/clients"
	"surfcast/internal/models"
)

func newTestTideService(repo *fakeTideRepo, fetcher tideFetcher, now time.Time) *TideService {
	return NewTideService(
		repo,
		fetcher,
		clockwork.NewFakeClockAt(now),
		time.UTC,
		-8.829, 115.086,
		testLogger(),
		testMetrics,
	)
}

// stubTideFetcher returns a canned series or error.
type stubTideFetcher struct {
	series *clients.TideSeries
	err    error
	calls  int
}

func (s *stubTideFetcher) SeaLevelRange(ctx context.Context, lat, lon float64, startDate time.Time, days int) (*clients.TideSeries, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.series, nil
}

// seriesForRange builds an upstream response with 24 hourly points per day
// and two extremes per day.
func seriesForRange(start time.Time, days int) *clients.TideSeries {
	series := &clients.TideSeries{}
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d)
		for h := 0; h < 24; h++ {
			ts := time.Date(date.Year(), date.Month(), date.Day(), h, 0, 0, 0, time.UTC)
			series.Hourly = append(series.Hourly, clients.TidePoint{
				Unix:    ts.Unix(),
				HeightM: 1.0 + 0.5*float64(h%6),
			})
		}
		high := time.Date(date.Year(), date.Month(), date.Day(), 6, 12, 0, 0, time.UTC)
		low := time.Date(date.Year(), date.Month(), date.Day(), 18, 40, 0, 0, time.UTC)
		series.Extremes = append(series.Extremes,
			clients.TideExtremeEvent{Unix: high.Unix(), HeightM: 2.4, Type: models.ExtremeHigh},
			clients.TideExtremeEvent{Unix: low.Unix(), HeightM: 0.3, Type: models.ExtremeLow},
		)
	}
	return series
}

func TestDecide_NoDataForToday(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestTideService(newFakeTideRepo(), &stubTideFetcher{}, today)

	decision, err := svc.Decide(context.Background(), today)
	require.NoError(t, err)

	assert.True(t, decision.ShouldFetch)
	assert.Equal(t, "no data for today", decision.Reason)
	assert.Equal(t, today, decision.StartDate)
	assert.Equal(t, today.AddDate(0, 0, 6), decision.EndDate)
}

func TestDecide_PartialTodayIsAMiss(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := newFakeTideRepo()

	// 23 of 24 hours present: still a miss.
	partial := completeDay(today)
	partial.Hourly = partial.Hourly[:23]
	repo.days[today.Format("2006-01-02")] = partial

	svc := newTestTideService(repo, &stubTideFetcher{}, today)

	decision, err := svc.Decide(context.Background(), today)
	require.NoError(t, err)
	assert.True(t, decision.ShouldFetch)
	assert.Equal(t, "no data for today", decision.Reason)
}

func TestDecide_NoPreviousFetch(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := newFakeTideRepo()
	repo.days[today.Format("2006-01-02")] = completeDay(today)

	svc := newTestTideService(repo, &stubTideFetcher{}, today)

	decision, err := svc.Decide(context.Background(), today)
	require.NoError(t, err)
	assert.True(t, decision.ShouldFetch)
	assert.Equal(t, "no previous fetch", decision.Reason)
}

func TestDecide_FetchIntervalElapsed(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for elapsed := 0; elapsed <= 8; elapsed++ {
		repo := newFakeTideRepo()
		repo.days[today.Format("2006-01-02")] = completeDay(today)
		lookahead := today.AddDate(0, 0, 3)
		repo.days[lookahead.Format("2006-01-02")] = completeDay(lookahead)
		repo.fetchLog = append(repo.fetchLog, &models.FetchLogEntry{
			FetchDate: today.AddDate(0, 0, -elapsed),
		})

		svc := newTestTideService(repo, &stubTideFetcher{}, today)

		decision, err := svc.Decide(context.Background(), today)
		require.NoError(t, err)

		if elapsed >= 5 {
			assert.True(t, decision.ShouldFetch, "elapsed=%d", elapsed)
			assert.Contains(t, decision.Reason, "days ago")
		} else {
			assert.False(t, decision.ShouldFetch, "elapsed=%d", elapsed)
		}
	}
}

func TestDecide_LookaheadBufferBroken(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := newFakeTideRepo()
	repo.days[today.Format("2006-01-02")] = completeDay(today)
	repo.fetchLog = append(repo.fetchLog, &models.FetchLogEntry{
		FetchDate: today.AddDate(0, 0, -2),
	})

	svc := newTestTideService(repo, &stubTideFetcher{}, today)

	decision, err := svc.Decide(context.Background(), today)
	require.NoError(t, err)
	assert.True(t, decision.ShouldFetch)
	assert.Contains(t, decision.Reason, "2026-03-13")
}

func TestEnsureFresh_GroupsAndPersistsRange(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := newFakeTideRepo()
	fetcher := &stubTideFetcher{series: seriesForRange(today, 7)}

	svc := newTestTideService(repo, fetcher, today.Add(9*time.Hour))

	require.NoError(t, svc.EnsureFresh(context.Background()))
	require.Equal(t, 1, fetcher.calls)

	require.Len(t, repo.replaced, 1)
	days := repo.replaced[0]
	require.Len(t, days, 7)
	for i, day := range days {
		assert.True(t, day.Complete(), "day %d incomplete", i)
		assert.Len(t, day.Extremes, 2)
		assert.Equal(t, today.AddDate(0, 0, i).Format("2006-01-02"), day.Date.Format("2006-01-02"))
	}

	require.Len(t, repo.fetchLog, 1)
	log := repo.fetchLog[0]
	assert.Equal(t, today, log.FetchDate)
	assert.Equal(t, today, log.StartDate)
	assert.Equal(t, today.AddDate(0, 0, 6), log.EndDate)
	assert.Equal(t, 7, log.DaysFetched)
}

func TestEnsureFresh_NoFetchWhenCacheFresh(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := newFakeTideRepo()
	repo.days[today.Format("2006-01-02")] = completeDay(today)
	lookahead := today.AddDate(0, 0, 3)
	repo.days[lookahead.Format("2006-01-02")] = completeDay(lookahead)
	repo.fetchLog = append(repo.fetchLog, &models.FetchLogEntry{FetchDate: today.AddDate(0, 0, -1)})

	fetcher := &stubTideFetcher{}
	svc := newTestTideService(repo, fetcher, today.Add(9*time.Hour))

	require.NoError(t, svc.EnsureFresh(context.Background()))
	assert.Equal(t, 0, fetcher.calls)
}

func TestEnsureFresh_WriteFailureLeavesNoLog(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := newFakeTideRepo()
	repo.failWrite = true
	fetcher := &stubTideFetcher{series: seriesForRange(today, 7)}

	svc := newTestTideService(repo, fetcher, today.Add(9*time.Hour))

	require.Error(t, svc.EnsureFresh(context.Background()))
	assert.Empty(t, repo.fetchLog)
}

func TestCurrentTide_StageFromDayRange(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := newFakeTideRepo()

	day := &models.CachedTideDay{Date: today}
	for h := 0; h < 24; h++ {
		// Linear ramp 0.0 .. 2.3 m.
		day.Hourly = append(day.Hourly, models.HourlyTideSample{Date: today, Hour: h, HeightM: 0.1 * float64(h)})
	}
	repo.days[today.Format("2006-01-02")] = day

	tests := []struct {
		hour  int
		stage models.TideStage
	}{
		{2, models.TideStageLow},
		{12, models.TideStageMid},
		{22, models.TideStageHigh},
	}

	for _, tt := range tests {
		now := time.Date(2026, 3, 10, tt.hour, 30, 0, 0, time.UTC)
		svc := newTestTideService(repo, &stubTideFetcher{}, now)

		height, stage := svc.CurrentTide(context.Background())
		require.NotNil(t, height)
		assert.InDelta(t, 0.1*float64(tt.hour), *height, 1e-9)
		assert.Equal(t, tt.stage, stage)
	}
}

func TestCurrentTide_UnknownWhenDayMissing(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc := newTestTideService(newFakeTideRepo(), &stubTideFetcher{}, now)

	height, stage := svc.CurrentTide(context.Background())
	assert.Nil(t, height)
	assert.Equal(t, models.TideStageUnknown, stage)
}
