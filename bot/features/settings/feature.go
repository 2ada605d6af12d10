package settings

import (
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /settings admin configuration commands
type Feature struct {
	settingsService service.GuildSettingsService
}

func New(settingsService service.GuildSettingsService) *Feature {
	return &Feature{
		settingsService: settingsService,
	}
}

// HandleCommand routes /settings subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "tickets":
		f.handleTickets(s, i)
	case "bugs":
		f.handleBugs(s, i)
	case "antiping":
		f.handleAntiping(s, i)
	case "show":
		f.handleShow(s, i)
	}
}
