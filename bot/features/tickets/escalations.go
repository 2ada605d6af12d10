package tickets

import (
	"context"
	"time"

	"guildkeeper/bot/common"
	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// RecordMessage forwards an inbound channel message to the ticket log. Called
// for every guild message; channels without an open ticket are ignored.
func (f *Feature) RecordMessage(ctx context.Context, channelID int64, msg *models.TicketMessage) {
	if err := f.ticketService.RecordMessage(ctx, channelID, msg); err != nil {
		log.Errorf("Error recording ticket message in channel %d: %v", channelID, err)
	}
}

// RunInactivityScan applies one pass of the inactivity escalation and sends
// the due notifications. Warning flags and closes are already persisted by
// the service; this only performs the Discord side effects.
func (f *Feature) RunInactivityScan(ctx context.Context, s *discordgo.Session, now time.Time) {
	escalations, err := f.ticketService.ScanInactive(ctx, now)
	if err != nil {
		log.Errorf("Error scanning inactive tickets: %v", err)
		return
	}

	for _, escalation := range escalations {
		channel := common.FormatID(escalation.Ticket.ChannelID)

		switch escalation.Action {
		case service.EscalationWarn30:
			_, err := s.ChannelMessageSend(channel, "⚠️ This ticket has been inactive and will be closed automatically in **30 minutes** unless someone replies.")
			if err != nil {
				log.Errorf("Error sending 30-minute warning for ticket %d: %v", escalation.Ticket.ID, err)
			}

		case service.EscalationWarn10:
			_, err := s.ChannelMessageSend(channel, "⚠️ Final warning: this ticket will be closed automatically in **10 minutes** unless someone replies.")
			if err != nil {
				log.Errorf("Error sending 10-minute warning for ticket %d: %v", escalation.Ticket.ID, err)
			}

		case service.EscalationClose:
			_, err := s.ChannelMessageSend(channel, "🔒 This ticket was closed automatically due to inactivity.")
			if err != nil {
				log.Errorf("Error announcing auto-close for ticket %d: %v", escalation.Ticket.ID, err)
			}
			f.archiveClosedTicket(s, escalation.Ticket, escalation.Messages)
		}
	}
}
