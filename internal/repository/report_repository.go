package repository

import (
	"context"
	"database/sql"
	"fmt"

	"surfcast/internal/models"
	"surfcast/pkg/database"
	"surfcast/pkg/logging"
	"surfcast/pkg/metrics"
)

// ReportRepository provides data access for cached narrative reports
type ReportRepository interface {
	Get(ctx context.Context, spotName, locale string) (*models.CachedReport, error)
	Upsert(ctx context.Context, report *models.CachedReport) error
	HealthCheck(ctx context.Context) error
}

// reportRepository implements ReportRepository
type reportRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ReportRepository {
	return &reportRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Get retrieves the cached report for a (spot, locale) pair.
func (r *reportRepository) Get(ctx context.Context, spotName, locale string) (*models.CachedReport, error) {
	query := `
		SELECT spot_name, locale, title, summary, verdict,
		       conditions_hash, updated_at, expires_at
		FROM ai_reports
		WHERE spot_name = $1 AND locale = $2
	`

	var report models.CachedReport
	err := r.db.GetContext(ctx, "get_report", &report, query, spotName, locale)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "ai_report",
			ID:       fmt.Sprintf("%s:%s", spotName, locale),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return &report, nil
}

// Upsert creates or replaces the cached report for its (spot, locale) key.
func (r *reportRepository) Upsert(ctx context.Context, report *models.CachedReport) error {
	query := `
		INSERT INTO ai_reports (
			spot_name, locale, title, summary, verdict,
			conditions_hash, updated_at, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (spot_name, locale) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			verdict = EXCLUDED.verdict,
			conditions_hash = EXCLUDED.conditions_hash,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at
	`

	_, err := r.db.ExecContext(ctx, "upsert_report", query,
		report.SpotName,
		report.Locale,
		report.Title,
		report.Summary,
		string(report.Verdict),
		report.ConditionsHash,
		report.UpdatedAt,
		report.ExpiresAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_UPSERT_REPORT] Report persisted", logging.Fields{
		"spot_name": report.SpotName,
		"locale":    report.Locale,
		"verdict":   string(report.Verdict),
	})

	return nil
}

// HealthCheck performs a repository health check
func (r *reportRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
