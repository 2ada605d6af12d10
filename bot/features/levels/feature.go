package levels

import (
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles message XP tracking and the rank commands
type Feature struct {
	levelService service.LevelService
}

func New(levelService service.LevelService) *Feature {
	return &Feature{
		levelService: levelService,
	}
}

// HandleCommand routes the leveling top-level commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "rank":
		f.handleRank(s, i)
	case "levels":
		f.handleTop(s, i)
	}
}
