package keys

import (
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles key generation, redemption and prize administration
type Feature struct {
	keyService   service.KeyService
	prizeService service.PrizeService
}

func New(keyService service.KeyService, prizeService service.PrizeService) *Feature {
	return &Feature{
		keyService:   keyService,
		prizeService: prizeService,
	}
}

// HandleKeyCommand routes /key subcommands
func (f *Feature) HandleKeyCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "generate":
		f.handleGenerate(s, i, options[0].Options)
	case "redeem":
		f.handleRedeem(s, i, options[0].Options)
	case "stats":
		f.handleStats(s, i)
	}
}

// HandlePrizeCommand routes /prize subcommands
func (f *Feature) HandlePrizeCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "add":
		f.handlePrizeAdd(s, i, options[0].Options)
	case "list":
		f.handlePrizeList(s, i)
	case "remove":
		f.handlePrizeRemove(s, i, options[0].Options)
	}
}
