package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"surfcast/internal/models"
	"surfcast/pkg/database"
	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

// TideRepository provides data access for the tide cache
type TideRepository interface {
	// Day operations
	GetDay(ctx context.Context, date time.Time) (*models.CachedTideDay, error)
	PutDay(ctx context.Context, day *models.CachedTideDay) error

	// ReplaceRange persists a contiguous run of days plus the fetch-log
	// row in a single transaction. Nothing is written if any day fails.
	ReplaceRange(ctx context.Context, days []*models.CachedTideDay, log *models.FetchLogEntry) error

	// Fetch-log operations
	LatestFetchLog(ctx context.Context) (*models.FetchLogEntry, error)
	UpsertFetchLog(ctx context.Context, entry *models.FetchLogEntry) error

	// RetentionSweep deletes cached days and fetch-log rows older than
	// the cutoff date.
	RetentionSweep(ctx context.Context, olderThan time.Time) (int64, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// tideRepository implements TideRepository
type tideRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewTideRepository creates a new tide repository
func NewTideRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) TideRepository {
	return &tideRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// GetDay retrieves one cached calendar day. A day with fewer than 24
// distinct hourly samples counts as a cache miss and returns NotFoundError.
func (r *tideRepository) GetDay(ctx context.Context, date time.Time) (*models.CachedTideDay, error) {
	day := date.Format("2006-01-02")

	hourlyQuery := `
		SELECT date, hour, height_m
		FROM tide_heights
		WHERE date = $1
		ORDER BY hour
	`

	var hourly []models.HourlyTideSample
	if err := r.db.SelectContext(ctx, "get_tide_hourly", &hourly, hourlyQuery, day); err != nil {
		return nil, fmt.Errorf("failed to get hourly tides: %w", err)
	}

	candidate := &models.CachedTideDay{Date: date, Hourly: hourly}
	if !candidate.Complete() {
		return nil, &NotFoundError{
			Resource: "tide_day",
			ID:       day,
		}
	}

	extremesQuery := `
		SELECT date, extreme_time, height_m, extreme_type
		FROM tide_extremes
		WHERE date = $1
		ORDER BY extreme_time
	`

	var extremes []models.TideExtreme
	if err := r.db.SelectContext(ctx, "get_tide_extremes", &extremes, extremesQuery, day); err != nil {
		return nil, fmt.Errorf("failed to get tide extremes: %w", err)
	}
	candidate.Extremes = extremes

	return candidate, nil
}

// PutDay upserts one day's hourly samples and replaces its extremes.
func (r *tideRepository) PutDay(ctx context.Context, day *models.CachedTideDay) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.writeDayTx(ctx, tx, day); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_PUT_TIDE_DAY] Day persisted", logging.Fields{
		"date":     day.Date.Format("2006-01-02"),
		"hours":    len(day.Hourly),
		"extremes": len(day.Extremes),
	})

	return nil
}

// ReplaceRange persists every day and the fetch-log row in one
// transaction. The fetch-log row doubles as the success marker: it only
// exists if every day in the range landed.
func (r *tideRepository) ReplaceRange(ctx context.Context, days []*models.CachedTideDay, log *models.FetchLogEntry) error {
	if len(days) == 0 {
		return fmt.Errorf("refusing to replace empty range")
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.logger.Debug(ctx, "[REPO_REPLACE_RANGE] Range replacement completed", logging.Fields{
			"days":        len(days),
			"start_date":  log.StartDate.Format("2006-01-02"),
			"end_date":    log.EndDate.Format("2006-01-02"),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, day := range days {
		if err := r.writeDayTx(ctx, tx, day); err != nil {
			return err
		}
	}

	if err := r.upsertFetchLogTx(ctx, tx, log); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.TideDaysCachedLast.Set(float64(len(days)))

	return nil
}

// writeDayTx upserts hourly rows and replaces extremes for one day inside
// an open transaction.
func (r *tideRepository) writeDayTx(ctx context.Context, tx *sqlx.Tx, day *models.CachedTideDay) error {
	date := day.Date.Format("2006-01-02")

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tide_heights (date, hour, height_m, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date, hour) DO UPDATE SET
			height_m = EXCLUDED.height_m,
			updated_at = EXCLUDED.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare hourly statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, s := range day.Hourly {
		if _, err := stmt.ExecContext(ctx, date, s.Hour, s.HeightM, now); err != nil {
			return fmt.Errorf("failed to insert hourly tide %s hour %d: %w", date, s.Hour, err)
		}
	}

	// Extremes have no stable per-row key, so each day's set is replaced
	// wholesale.
	if _, err := tx.ExecContext(ctx, `DELETE FROM tide_extremes WHERE date = $1`, date); err != nil {
		return fmt.Errorf("failed to clear extremes for %s: %w", date, err)
	}

	for _, e := range day.Extremes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tide_extremes (date, extreme_time, height_m, extreme_type)
			VALUES ($1, $2, $3, $4)
		`, date, e.Time, e.HeightM, string(e.Type))
		if err != nil {
			return fmt.Errorf("failed to insert extreme for %s: %w", date, err)
		}
	}

	return nil
}

// LatestFetchLog returns the most recent fetch-log row, or NotFoundError
// when no fetch has ever succeeded.
func (r *tideRepository) LatestFetchLog(ctx context.Context) (*models.FetchLogEntry, error) {
	query := `
		SELECT fetch_date, start_date, end_date, days_fetched
		FROM tide_fetch_log
		ORDER BY fetch_date DESC
		LIMIT 1
	`

	var entry models.FetchLogEntry
	err := r.db.GetContext(ctx, "latest_fetch_log", &entry, query)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "tide_fetch_log",
			ID:       "latest",
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get fetch log: %w", err)
	}

	return &entry, nil
}

// UpsertFetchLog records a successful fetch outside of ReplaceRange.
func (r *tideRepository) UpsertFetchLog(ctx context.Context, entry *models.FetchLogEntry) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.upsertFetchLogTx(ctx, tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *tideRepository) upsertFetchLogTx(ctx context.Context, tx *sqlx.Tx, entry *models.FetchLogEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tide_fetch_log (fetch_date, start_date, end_date, days_fetched)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (fetch_date) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			days_fetched = EXCLUDED.days_fetched
	`,
		entry.FetchDate.Format("2006-01-02"),
		entry.StartDate.Format("2006-01-02"),
		entry.EndDate.Format("2006-01-02"),
		entry.DaysFetched,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert fetch log: %w", err)
	}

	return nil
}

// RetentionSweep deletes tide rows and fetch-log rows dated before the
// cutoff. Returns the number of hourly rows removed.
func (r *tideRepository) RetentionSweep(ctx context.Context, olderThan time.Time) (int64, error) {
	cutoff := olderThan.Format("2006-01-02")

	res, err := r.db.ExecContext(ctx, "sweep_tide_heights", `DELETE FROM tide_heights WHERE date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep tide heights: %w", err)
	}

	removed, _ := res.RowsAffected()

	if _, err := r.db.ExecContext(ctx, "sweep_tide_extremes", `DELETE FROM tide_extremes WHERE date < $1`, cutoff); err != nil {
		return removed, fmt.Errorf("failed to sweep tide extremes: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, "sweep_fetch_log", `DELETE FROM tide_fetch_log WHERE fetch_date < $1`, cutoff); err != nil {
		return removed, fmt.Errorf("failed to sweep fetch log: %w", err)
	}

	r.logger.Info(ctx, "[REPO_RETENTION_SWEEP] Old tide data removed", logging.Fields{
		"cutoff":       cutoff,
		"rows_removed": removed,
	})

	return removed, nil
}

// HealthCheck performs a repository health check
func (r *tideRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
