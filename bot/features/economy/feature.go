package economy

import (
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the lightweight currency commands
type Feature struct {
	economyService service.EconomyService
}

func New(economyService service.EconomyService) *Feature {
	return &Feature{
		economyService: economyService,
	}
}

// HandleCommand routes the economy top-level commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "balance":
		f.handleBalance(s, i)
	case "daily":
		f.handleDaily(s, i)
	case "work":
		f.handleWork(s, i)
	case "give":
		f.handleGive(s, i)
	case "rich":
		f.handleRich(s, i)
	}
}
