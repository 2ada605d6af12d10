package common

import (
	"fmt"
	"strings"
	"time"
)

// FormatBalance formats a currency amount with thousand separators
func FormatBalance(balance int64) string {
	// Convert to string
	str := fmt.Sprintf("%d", balance)

	// Add commas for thousands
	n := len(str)
	if n <= 3 {
		return str
	}

	var result strings.Builder
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatDuration renders a duration as a compact "1h 30m" style string
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d < time.Minute {
		return "less than a minute"
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// FormatUserMention renders an int64 user id as a Discord mention
func FormatUserMention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

// FormatUserMentions renders a list of user ids as comma-joined mentions
func FormatUserMentions(userIDs []int64) string {
	mentions := make([]string, len(userIDs))
	for i, id := range userIDs {
		mentions[i] = FormatUserMention(id)
	}
	return strings.Join(mentions, ", ")
}
