package bugs

import (
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles throttled bug report intake and the staff registry
type Feature struct {
	bugService      service.BugReportService
	settingsService service.GuildSettingsService
}

func New(bugService service.BugReportService, settingsService service.GuildSettingsService) *Feature {
	return &Feature{
		bugService:      bugService,
		settingsService: settingsService,
	}
}

// HandleCommand routes /bug subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "resolve":
		f.handleResolve(s, i, options[0].Options)
	case "list":
		f.handleList(s, i)
	}
}
