package services

import (
	"context"
	"io"
	"time"

	"surfcast/internal/models"
	"surfcast/internal/repository"
	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

// One collector for the whole test binary; registering a second one with
// the same namespace would panic.
var testMetrics = metrics.NewCollector("surfcast_test")

func testLogger() *logging.StructuredLogger {
	l := logging.NewStructuredLogger("test", "0.0.0", logging.ErrorLevel)
	l.SetOutput(io.Discard)
	return l
}

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// fakeTideRepo is an in-memory TideRepository.
type fakeTideRepo struct {
	days      map[string]*models.CachedTideDay
	fetchLog  []*models.FetchLogEntry
	replaced  [][]*models.CachedTideDay
	failWrite bool
}

func newFakeTideRepo() *fakeTideRepo {
	return &fakeTideRepo{days: map[string]*models.CachedTideDay{}}
}

func (f *fakeTideRepo) GetDay(ctx context.Context, date time.Time) (*models.CachedTideDay, error) {
	key := date.Format("2006-01-02")
	day, ok := f.days[key]
	if !ok || !day.Complete() {
		return nil, &repository.NotFoundError{Resource: "tide_day", ID: key}
	}
	return day, nil
}

func (f *fakeTideRepo) PutDay(ctx context.Context, day *models.CachedTideDay) error {
	f.days[day.Date.Format("2006-01-02")] = day
	return nil
}

func (f *fakeTideRepo) ReplaceRange(ctx context.Context, days []*models.CachedTideDay, log *models.FetchLogEntry) error {
	if f.failWrite {
		return context.DeadlineExceeded
	}
	for _, d := range days {
		f.days[d.Date.Format("2006-01-02")] = d
	}
	f.fetchLog = append(f.fetchLog, log)
	f.replaced = append(f.replaced, days)
	return nil
}

func (f *fakeTideRepo) LatestFetchLog(ctx context.Context) (*models.FetchLogEntry, error) {
	if len(f.fetchLog) == 0 {
		return nil, &repository.NotFoundError{Resource: "tide_fetch_log", ID: "latest"}
	}
	latest := f.fetchLog[0]
	for _, e := range f.fetchLog[1:] {
		if e.FetchDate.After(latest.FetchDate) {
			latest = e
		}
	}
	return latest, nil
}

func (f *fakeTideRepo) UpsertFetchLog(ctx context.Context, entry *models.FetchLogEntry) error {
	f.fetchLog = append(f.fetchLog, entry)
	return nil
}

func (f *fakeTideRepo) RetentionSweep(ctx context.Context, olderThan time.Time) (int64, error) {
	var removed int64
	for key, day := range f.days {
		if day.Date.Before(olderThan) {
			delete(f.days, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeTideRepo) HealthCheck(ctx context.Context) error {
	return nil
}

// completeDay builds a full 24-hour cached day with a sinusoid-free flat
// curve plus one peak so stage derivation has a range to work with.
func completeDay(date time.Time) *models.CachedTideDay {
	day := &models.CachedTideDay{Date: date}
	for h := 0; h < 24; h++ {
		height := 0.8 + 0.1*float64(h%12)
		day.Hourly = append(day.Hourly, models.HourlyTideSample{Date: date, Hour: h, HeightM: height})
	}
	return day
}
