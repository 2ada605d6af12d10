package models

// GuildSettings holds per-guild configuration managed by admin commands
type GuildSettings struct {
	GuildID              int64  `db:"guild_id"`
	TicketCategoryID     *int64 `db:"ticket_category_id"`
	ClosedCategoryID     *int64 `db:"closed_category_id"`
	TicketLogChannelID   *int64 `db:"ticket_log_channel_id"`
	StaffRoleID          *int64 `db:"staff_role_id"`
	BugInputChannelID    *int64 `db:"bug_input_channel_id"`
	BugRegistryChannelID *int64 `db:"bug_registry_channel_id"`
	BugPingMode          bool   `db:"bug_ping_mode"`
	AntipingWindowMin    *int   `db:"antiping_window_min"`
	AntipingThreshold    *int   `db:"antiping_threshold"`
	AntipingTimeoutMin   *int   `db:"antiping_timeout_min"`
}
