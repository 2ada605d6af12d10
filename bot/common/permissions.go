package common

import (
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// IsUserAdmin reports whether the member has administrator permission in the guild
func IsUserAdmin(s *discordgo.Session, guildID, userID string) bool {
	perms, err := s.UserChannelPermissions(userID, guildID)
	if err != nil {
		// Fall back to the member's role list when the state cache misses
		member, err := s.GuildMember(guildID, userID)
		if err != nil {
			log.Errorf("Error checking admin permission for user %s: %v", userID, err)
			return false
		}
		guild, err := s.Guild(guildID)
		if err != nil {
			log.Errorf("Error loading guild %s: %v", guildID, err)
			return false
		}
		for _, roleID := range member.Roles {
			for _, role := range guild.Roles {
				if role.ID == roleID && role.Permissions&discordgo.PermissionAdministrator != 0 {
					return true
				}
			}
		}
		return false
	}

	return perms&discordgo.PermissionAdministrator != 0
}
