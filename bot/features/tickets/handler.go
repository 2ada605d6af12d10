package tickets

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/models"
	"guildkeeper/transcript"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleOpen(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	opts := common.OptionMap(options)

	kind := "support"
	if opt, ok := opts["kind"]; ok {
		kind = opt.StringValue()
	}

	f.openFromPanel(s, i, kind)
}

// openFromPanel creates the dedicated channel and binds a ticket to it. Used
// by both /ticket open and the panel buttons.
func (f *Feature) openFromPanel(s *discordgo.Session, i *discordgo.InteractionCreate, kind string) {
	ctx := context.Background()

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	openerID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	settings, err := f.settingsService.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		log.Errorf("Error loading settings for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to open ticket. Please try again.")
		return
	}

	ticketKind := models.TicketKindSupport
	if kind == "purchase" {
		ticketKind = models.TicketKindPurchase
	}

	// Channel creation happens first; the service call only binds the ticket
	channelData := discordgo.GuildChannelCreateData{
		Name: fmt.Sprintf("%s-%s", ticketKind, i.Member.User.Username),
		Type: discordgo.ChannelTypeGuildText,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				ID:   i.GuildID,
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: discordgo.PermissionViewChannel,
			},
			{
				ID:    i.Member.User.ID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
			},
		},
	}
	if settings.TicketCategoryID != nil {
		channelData.ParentID = common.FormatID(*settings.TicketCategoryID)
	}
	if settings.StaffRoleID != nil {
		channelData.PermissionOverwrites = append(channelData.PermissionOverwrites, &discordgo.PermissionOverwrite{
			ID:    common.FormatID(*settings.StaffRoleID),
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
		})
	}

	channel, err := s.GuildChannelCreateComplex(i.GuildID, channelData)
	if err != nil {
		log.Errorf("Error creating ticket channel in guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to create the ticket channel. Check the bot's permissions.")
		return
	}

	channelID, err := common.ParseID(channel.ID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", channel.ID, err)
		common.RespondWithError(s, i, "Unable to open ticket. Please try again.")
		return
	}

	ticket := &models.Ticket{
		GuildID:   guildID,
		OpenerID:  openerID,
		Kind:      ticketKind,
		ChannelID: channelID,
	}

	reason, err := f.ticketService.Open(ctx, ticket)
	if err != nil {
		log.Errorf("Error opening ticket for user %d: %v", openerID, err)
		common.RespondWithError(s, i, "Unable to open ticket. Please try again.")
		return
	}
	if reason == models.ReasonDuplicate {
		common.RespondWithError(s, i, "That channel already has a ticket bound to it.")
		return
	}

	greeting := fmt.Sprintf("Hello %s, a staff member will be with you shortly.", i.Member.User.Mention())
	if ticketKind == models.TicketKindPurchase {
		greeting += "\nPlease use `/ticket details` to tell us which plan and payment method you want."
	}
	if _, err := s.ChannelMessageSend(channel.ID, greeting); err != nil {
		log.Errorf("Error sending ticket greeting in channel %s: %v", channel.ID, err)
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Your %s ticket is ready: <#%s>", ticketKind, channel.ID), true); err != nil {
		log.Errorf("Error responding to ticket open: %v", err)
	}
}

func (f *Feature) handleClose(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	opts := common.OptionMap(options)

	reason := "Closed by staff"
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	closedBy, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := f.ticketService.Close(ctx, channelID, closedBy, reason)
	if err != nil {
		log.Errorf("Error closing ticket in channel %d: %v", channelID, err)
		common.RespondWithError(s, i, "Unable to close ticket. Please try again.")
		return
	}

	switch result.Reason {
	case models.ReasonNotFound:
		common.RespondWithError(s, i, "This channel has no ticket bound to it.")
		return
	case models.ReasonNotOpen:
		common.RespondWithError(s, i, "This ticket is already closed.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Ticket #%d closed: %s", result.Ticket.ID, reason), false); err != nil {
		log.Errorf("Error responding to ticket close: %v", err)
	}

	f.archiveClosedTicket(s, result.Ticket, result.Messages)
}

// archiveClosedTicket uploads the transcript to the log channel and moves the
// ticket channel to the closed category when one is configured
func (f *Feature) archiveClosedTicket(s *discordgo.Session, ticket *models.Ticket, messages []*models.TicketMessage) {
	ctx := context.Background()

	settings, err := f.settingsService.GetOrCreateSettings(ctx, ticket.GuildID)
	if err != nil {
		log.Errorf("Error loading settings for guild %d: %v", ticket.GuildID, err)
		return
	}

	if settings.TicketLogChannelID != nil {
		html, err := transcript.Render(ticket, messages)
		if err != nil {
			log.Errorf("Error rendering transcript for ticket %d: %v", ticket.ID, err)
		} else {
			logChannel := common.FormatID(*settings.TicketLogChannelID)
			summary := fmt.Sprintf("📄 Transcript for ticket #%d (%s, %d messages)", ticket.ID, ticket.Kind, len(messages))
			_, err = s.ChannelMessageSendComplex(logChannel, &discordgo.MessageSend{
				Content: summary,
				Files: []*discordgo.File{
					{
						Name:        transcript.Filename(ticket),
						ContentType: "text/html",
						Reader:      bytes.NewReader(html),
					},
				},
			})
			if err != nil {
				log.Errorf("Error uploading transcript for ticket %d: %v", ticket.ID, err)
			}
		}
	}

	channelID := common.FormatID(ticket.ChannelID)

	// The opener loses write access once the ticket is closed
	err = s.ChannelPermissionSet(channelID, common.FormatID(ticket.OpenerID), discordgo.PermissionOverwriteTypeMember,
		0, discordgo.PermissionViewChannel|discordgo.PermissionSendMessages)
	if err != nil {
		log.Errorf("Error revoking opener access for ticket %d: %v", ticket.ID, err)
	}

	edit := &discordgo.ChannelEdit{}
	if channel, err := s.Channel(channelID); err == nil && !strings.HasPrefix(channel.Name, "closed-") {
		edit.Name = "closed-" + channel.Name
	}
	if settings.ClosedCategoryID != nil {
		edit.ParentID = common.FormatID(*settings.ClosedCategoryID)
	}
	if edit.Name != "" || edit.ParentID != "" {
		if _, err := s.ChannelEdit(channelID, edit); err != nil {
			log.Errorf("Error archiving channel for ticket %d: %v", ticket.ID, err)
		}
	}
}

func (f *Feature) handleReopen(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	reason, err := f.ticketService.Reopen(ctx, channelID)
	if err != nil {
		log.Errorf("Error reopening ticket in channel %d: %v", channelID, err)
		common.RespondWithError(s, i, "Unable to reopen ticket. Please try again.")
		return
	}

	switch reason {
	case models.ReasonNotFound:
		common.RespondWithError(s, i, "This channel has no ticket bound to it.")
	case models.ReasonNotOpen:
		common.RespondWithError(s, i, "This ticket is not closed.")
	default:
		if err := common.RespondWithSuccess(s, i, "Ticket reopened.", false); err != nil {
			log.Errorf("Error responding to ticket reopen: %v", err)
		}
	}
}

func (f *Feature) handleClaim(s *discordgo.Session, i *discordgo.InteractionCreate, claiming bool) {
	ctx := context.Background()

	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var claimant *int64
	if claiming {
		id, err := common.ParseID(i.Member.User.ID)
		if err != nil {
			log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
			common.RespondWithError(s, i, "Unable to process request. Please try again.")
			return
		}
		claimant = &id
	}

	reason, err := f.ticketService.Claim(ctx, channelID, claimant)
	if err != nil {
		log.Errorf("Error updating claimant in channel %d: %v", channelID, err)
		common.RespondWithError(s, i, "Unable to update the ticket. Please try again.")
		return
	}

	switch reason {
	case models.ReasonNotFound:
		common.RespondWithError(s, i, "This channel has no ticket bound to it.")
	case models.ReasonNotOpen:
		common.RespondWithError(s, i, "This ticket is closed.")
	default:
		message := "Ticket released."
		if claiming {
			message = fmt.Sprintf("Ticket claimed by %s.", i.Member.User.Mention())
		}
		if err := common.RespondWithSuccess(s, i, message, false); err != nil {
			log.Errorf("Error responding to ticket claim: %v", err)
		}
	}
}

func (f *Feature) handleDetails(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	opts := common.OptionMap(options)

	plan := ""
	if opt, ok := opts["plan"]; ok {
		plan = opt.StringValue()
	}
	method := ""
	if opt, ok := opts["payment_method"]; ok {
		method = opt.StringValue()
	}

	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	reason, err := f.ticketService.SetPurchaseDetails(ctx, channelID, plan, method)
	if err != nil {
		log.Errorf("Error setting purchase details in channel %d: %v", channelID, err)
		common.RespondWithError(s, i, "Unable to save the details. Please try again.")
		return
	}

	switch reason {
	case models.ReasonNotFound:
		common.RespondWithError(s, i, "This channel has no ticket bound to it.")
	case models.ReasonValidationFailed:
		common.RespondWithError(s, i, "Details can only be set on purchase tickets.")
	default:
		if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Recorded plan **%s** via **%s**.", plan, method), false); err != nil {
			log.Errorf("Error responding to ticket details: %v", err)
		}
	}
}

// requireBoundTicket verifies the invoking channel has a ticket before any of
// the channel glue operations run
func (f *Feature) requireBoundTicket(s *discordgo.Session, i *discordgo.InteractionCreate) (*models.Ticket, bool) {
	ctx := context.Background()

	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return nil, false
	}

	ticket, err := f.ticketService.GetByChannel(ctx, channelID)
	if err != nil {
		log.Errorf("Error looking up ticket in channel %d: %v", channelID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return nil, false
	}
	if ticket == nil {
		common.RespondWithError(s, i, "This channel has no ticket bound to it.")
		return nil, false
	}
	return ticket, true
}

func (f *Feature) handleAddMember(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if _, ok := f.requireBoundTicket(s, i); !ok {
		return
	}
	opts := common.OptionMap(options)

	opt, ok := opts["user"]
	if !ok {
		common.RespondWithError(s, i, "A user is required.")
		return
	}
	target := opt.UserValue(s)

	err := s.ChannelPermissionSet(i.ChannelID, target.ID, discordgo.PermissionOverwriteTypeMember,
		discordgo.PermissionViewChannel|discordgo.PermissionSendMessages, 0)
	if err != nil {
		log.Errorf("Error adding user %s to ticket channel %s: %v", target.ID, i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to add the user. Check the bot's permissions.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("%s has been added to this ticket.", target.Mention()), false); err != nil {
		log.Errorf("Error responding to ticket add: %v", err)
	}
}

func (f *Feature) handleRemoveMember(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if _, ok := f.requireBoundTicket(s, i); !ok {
		return
	}
	opts := common.OptionMap(options)

	opt, ok := opts["user"]
	if !ok {
		common.RespondWithError(s, i, "A user is required.")
		return
	}
	target := opt.UserValue(s)

	if err := s.ChannelPermissionDelete(i.ChannelID, target.ID); err != nil {
		log.Errorf("Error removing user %s from ticket channel %s: %v", target.ID, i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to remove the user. Check the bot's permissions.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("%s has been removed from this ticket.", target.Mention()), false); err != nil {
		log.Errorf("Error responding to ticket remove: %v", err)
	}
}

func (f *Feature) handleRename(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if _, ok := f.requireBoundTicket(s, i); !ok {
		return
	}
	opts := common.OptionMap(options)

	name := ""
	if opt, ok := opts["name"]; ok {
		name = opt.StringValue()
	}
	if name == "" {
		common.RespondWithError(s, i, "A name is required.")
		return
	}

	if _, err := s.ChannelEdit(i.ChannelID, &discordgo.ChannelEdit{Name: name}); err != nil {
		log.Errorf("Error renaming ticket channel %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to rename the channel. Check the bot's permissions.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Channel renamed to **%s**.", name), false); err != nil {
		log.Errorf("Error responding to ticket rename: %v", err)
	}
}

func (f *Feature) handlePanel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to post panels.")
		return
	}

	ctx := context.Background()

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎫 Need help?",
		Description: "Open a ticket and a staff member will assist you in a private channel.",
		Color:       0x5865F2,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Support",
					Style:    discordgo.PrimaryButton,
					CustomID: "ticket_open_support",
					Emoji:    &discordgo.ComponentEmoji{Name: "🛠️"},
				},
				discordgo.Button{
					Label:    "Purchase",
					Style:    discordgo.SuccessButton,
					CustomID: "ticket_open_purchase",
					Emoji:    &discordgo.ComponentEmoji{Name: "💳"},
				},
			},
		},
	}

	msg, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		log.Errorf("Error posting ticket panel in channel %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to post the panel. Check the bot's permissions.")
		return
	}

	channelID, _ := common.ParseID(i.ChannelID)
	messageID, _ := common.ParseID(msg.ID)
	if err := f.ticketService.RegisterPanel(ctx, &models.TicketPanel{
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
	}); err != nil {
		log.Errorf("Error recording panel for guild %d: %v", guildID, err)
	}

	if err := common.RespondWithSuccess(s, i, "Ticket panel posted.", true); err != nil {
		log.Errorf("Error responding to ticket panel: %v", err)
	}
}

func (f *Feature) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	open, closed, err := f.ticketService.Stats(ctx, guildID)
	if err != nil {
		log.Errorf("Error loading ticket stats for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to load ticket stats. Please try again.")
		return
	}

	message := fmt.Sprintf("🎫 **%d** open tickets, **%d** closed.", open, closed)
	if err := common.Respond(s, i, message, true); err != nil {
		log.Errorf("Error responding to ticket stats: %v", err)
	}
}
