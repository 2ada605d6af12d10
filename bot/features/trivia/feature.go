package trivia

import (
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles trivia rounds and the durable score leaderboard
type Feature struct {
	triviaService service.TriviaService
}

func New(triviaService service.TriviaService) *Feature {
	return &Feature{
		triviaService: triviaService,
	}
}

// HandleCommand routes /trivia subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "start":
		f.handleStart(s, i)
	case "end":
		f.handleEnd(s, i)
	case "leaderboard":
		f.handleLeaderboard(s, i)
	}
}
