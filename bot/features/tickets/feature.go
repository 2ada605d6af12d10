package tickets

import (
	"strings"

	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the ticket lifecycle: panels, channels, transcripts and
// the inactivity escalation notifications
type Feature struct {
	ticketService   service.TicketService
	settingsService service.GuildSettingsService
}

func New(ticketService service.TicketService, settingsService service.GuildSettingsService) *Feature {
	return &Feature{
		ticketService:   ticketService,
		settingsService: settingsService,
	}
}

// HandleCommand routes /ticket subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "open":
		f.handleOpen(s, i, options[0].Options)
	case "close":
		f.handleClose(s, i, options[0].Options)
	case "reopen":
		f.handleReopen(s, i)
	case "claim":
		f.handleClaim(s, i, true)
	case "unclaim":
		f.handleClaim(s, i, false)
	case "details":
		f.handleDetails(s, i, options[0].Options)
	case "add":
		f.handleAddMember(s, i, options[0].Options)
	case "remove":
		f.handleRemoveMember(s, i, options[0].Options)
	case "rename":
		f.handleRename(s, i, options[0].Options)
	case "panel":
		f.handlePanel(s, i)
	case "stats":
		f.handleStats(s, i)
	}
}

// HandleComponent routes ticket panel button presses
func (f *Feature) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, "ticket_") {
		return false
	}

	switch customID {
	case "ticket_open_support":
		f.openFromPanel(s, i, "support")
	case "ticket_open_purchase":
		f.openFromPanel(s, i, "purchase")
	}
	return true
}
