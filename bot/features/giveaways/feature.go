package giveaways

import (
	"strings"

	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles giveaway commands, the entry button and result announcements
type Feature struct {
	giveawayService service.GiveawayService
}

func New(giveawayService service.GiveawayService) *Feature {
	return &Feature{
		giveawayService: giveawayService,
	}
}

// HandleCommand routes /giveaway subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "start":
		f.handleStart(s, i, options[0].Options)
	case "end":
		f.handleEnd(s, i, options[0].Options)
	case "reroll":
		f.handleReroll(s, i, options[0].Options)
	case "cancel":
		f.handleCancel(s, i, options[0].Options)
	case "list":
		f.handleList(s, i)
	}
}

// HandleComponent routes giveaway entry button presses
func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, "giveaway_enter_") {
		return false
	}

	f.handleEnter(s, i, strings.TrimPrefix(customID, "giveaway_enter_"))
	return true
}
