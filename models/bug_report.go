package models

import (
	"time"
)

// BugReportStatus represents the state of a registered bug report
type BugReportStatus string

const (
	BugReportStatusOpen     BugReportStatus = "open"
	BugReportStatusResolved BugReportStatus = "resolved"
)

// BugReport represents a user-submitted bug report captured from the input channel
type BugReport struct {
	ID                int64           `db:"id"`
	GuildID           int64           `db:"guild_id"`
	ReporterID        int64           `db:"reporter_id"`
	SourceChannelID   int64           `db:"source_channel_id"`
	SourceMessageID   int64           `db:"source_message_id"`
	Content           string          `db:"content"`
	Status            BugReportStatus `db:"status"`
	RegistryMessageID *int64          `db:"registry_message_id"`
	ResolvedBy        *int64          `db:"resolved_by"`
	ResolveReason     *string         `db:"resolve_reason"`
	ResolvedAt        *time.Time      `db:"resolved_at"`
	CreatedAt         time.Time       `db:"created_at"`
}
