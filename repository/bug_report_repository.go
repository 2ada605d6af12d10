package repository

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/database"
	"guildkeeper/models"

	"github.com/jackc/pgx/v5"
)

// BugReportRepository implements the BugReportRepository interface
type BugReportRepository struct {
	q queryable
}

// NewBugReportRepository creates a new bug report repository
func NewBugReportRepository(db *database.DB) *BugReportRepository {
	return &BugReportRepository{q: db.Pool}
}

// newBugReportRepositoryWithTx creates a new bug report repository with a transaction
func newBugReportRepositoryWithTx(tx queryable) *BugReportRepository {
	return &BugReportRepository{q: tx}
}

const bugReportColumns = `id, guild_id, reporter_id, source_channel_id, source_message_id,
	content, status, registry_message_id, resolved_by, resolve_reason, resolved_at, created_at`

func scanBugReport(row pgx.Row) (*models.BugReport, error) {
	var report models.BugReport
	err := row.Scan(
		&report.ID,
		&report.GuildID,
		&report.ReporterID,
		&report.SourceChannelID,
		&report.SourceMessageID,
		&report.Content,
		&report.Status,
		&report.RegistryMessageID,
		&report.ResolvedBy,
		&report.ResolveReason,
		&report.ResolvedAt,
		&report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Create persists a new bug report
func (r *BugReportRepository) Create(ctx context.Context, report *models.BugReport) error {
	query := `
		INSERT INTO bug_reports (guild_id, reporter_id, source_channel_id, source_message_id, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, status, created_at
	`

	err := r.q.QueryRow(ctx, query,
		report.GuildID,
		report.ReporterID,
		report.SourceChannelID,
		report.SourceMessageID,
		report.Content,
	).Scan(&report.ID, &report.Status, &report.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bug report for guild %d: %w", report.GuildID, err)
	}

	return nil
}

// GetByID retrieves a report by id, or nil when absent
func (r *BugReportRepository) GetByID(ctx context.Context, id int64) (*models.BugReport, error) {
	query := `SELECT ` + bugReportColumns + ` FROM bug_reports WHERE id = $1`

	report, err := scanBugReport(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bug report %d: %w", id, err)
	}

	return report, nil
}

// SetRegistryMessage records the registry repost for a report
func (r *BugReportRepository) SetRegistryMessage(ctx context.Context, reportID, messageID int64) error {
	query := `UPDATE bug_reports SET registry_message_id = $2 WHERE id = $1`

	result, err := r.q.Exec(ctx, query, reportID, messageID)
	if err != nil {
		return fmt.Errorf("failed to set registry message on report %d: %w", reportID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("bug report %d not found", reportID)
	}

	return nil
}

// Resolve marks an open report resolved; returns false when it was not open
func (r *BugReportRepository) Resolve(ctx context.Context, reportID, resolvedBy int64, reason string, now time.Time) (bool, error) {
	query := `
		UPDATE bug_reports
		SET status = 'resolved', resolved_by = $2, resolve_reason = $3, resolved_at = $4
		WHERE id = $1 AND status = 'open'
	`

	result, err := r.q.Exec(ctx, query, reportID, resolvedBy, reason, now)
	if err != nil {
		return false, fmt.Errorf("failed to resolve bug report %d: %w", reportID, err)
	}

	return result.RowsAffected() == 1, nil
}

// ListOpen returns open reports for a guild
func (r *BugReportRepository) ListOpen(ctx context.Context, guildID int64) ([]*models.BugReport, error) {
	query := `SELECT ` + bugReportColumns + ` FROM bug_reports WHERE guild_id = $1 AND status = 'open' ORDER BY id`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bug reports for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var reports []*models.BugReport
	for rows.Next() {
		report, err := scanBugReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bug report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bug reports: %w", err)
	}

	return reports, nil
}
