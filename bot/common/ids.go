package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ParseID converts a Discord snowflake string to int64
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatID converts an int64 snowflake back to Discord's string form
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// OptionMap indexes interaction options by name for direct lookup
func OptionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
