package antiping

import (
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles protected-target administration and mention escalation
type Feature struct {
	antipingService service.AntipingService
}

func New(antipingService service.AntipingService) *Feature {
	return &Feature{
		antipingService: antipingService,
	}
}

// HandleCommand routes /antiping subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "add":
		f.handleAdd(s, i, options[0].Options)
	case "remove":
		f.handleRemove(s, i, options[0].Options)
	case "list":
		f.handleList(s, i)
	}
}
