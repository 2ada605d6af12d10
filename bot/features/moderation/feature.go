package moderation

import (
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles moderation warnings
type Feature struct {
	infractionService service.InfractionService
}

func New(infractionService service.InfractionService) *Feature {
	return &Feature{
		infractionService: infractionService,
	}
}

// HandleCommand routes the moderation top-level commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "warn":
		f.handleWarn(s, i)
	case "warnings":
		f.handleWarnings(s, i)
	case "clearwarnings":
		f.handleClear(s, i)
	}
}
