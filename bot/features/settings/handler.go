package settings

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleTickets(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, ok := f.requireAdmin(s, i)
	if !ok {
		return
	}
	opts := common.OptionMap(i.ApplicationCommandData().Options[0].Options)

	_, err := f.settingsService.Update(ctx, guildID, func(settings *models.GuildSettings) {
		if opt, ok := opts["category"]; ok {
			if id, err := common.ParseID(opt.ChannelValue(s).ID); err == nil {
				settings.TicketCategoryID = &id
			}
		}
		if opt, ok := opts["closed_category"]; ok {
			if id, err := common.ParseID(opt.ChannelValue(s).ID); err == nil {
				settings.ClosedCategoryID = &id
			}
		}
		if opt, ok := opts["log_channel"]; ok {
			if id, err := common.ParseID(opt.ChannelValue(s).ID); err == nil {
				settings.TicketLogChannelID = &id
			}
		}
		if opt, ok := opts["staff_role"]; ok {
			if id, err := common.ParseID(opt.RoleValue(s, i.GuildID).ID); err == nil {
				settings.StaffRoleID = &id
			}
		}
	})
	if err != nil {
		log.Errorf("Error updating ticket settings for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to save the settings. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, "Ticket settings updated.", true); err != nil {
		log.Errorf("Error responding to settings tickets command: %v", err)
	}
}

func (f *Feature) handleBugs(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, ok := f.requireAdmin(s, i)
	if !ok {
		return
	}
	opts := common.OptionMap(i.ApplicationCommandData().Options[0].Options)

	_, err := f.settingsService.Update(ctx, guildID, func(settings *models.GuildSettings) {
		if opt, ok := opts["input_channel"]; ok {
			if id, err := common.ParseID(opt.ChannelValue(s).ID); err == nil {
				settings.BugInputChannelID = &id
			}
		}
		if opt, ok := opts["registry_channel"]; ok {
			if id, err := common.ParseID(opt.ChannelValue(s).ID); err == nil {
				settings.BugRegistryChannelID = &id
			}
		}
		if opt, ok := opts["ping_mode"]; ok {
			settings.BugPingMode = opt.BoolValue()
		}
	})
	if err != nil {
		log.Errorf("Error updating bug settings for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to save the settings. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, "Bug report settings updated.", true); err != nil {
		log.Errorf("Error responding to settings bugs command: %v", err)
	}
}

func (f *Feature) handleAntiping(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, ok := f.requireAdmin(s, i)
	if !ok {
		return
	}
	opts := common.OptionMap(i.ApplicationCommandData().Options[0].Options)

	_, err := f.settingsService.Update(ctx, guildID, func(settings *models.GuildSettings) {
		if opt, ok := opts["window_minutes"]; ok {
			minutes := int(opt.IntValue())
			settings.AntipingWindowMin = &minutes
		}
		if opt, ok := opts["threshold"]; ok {
			threshold := int(opt.IntValue())
			settings.AntipingThreshold = &threshold
		}
		if opt, ok := opts["timeout_minutes"]; ok {
			minutes := int(opt.IntValue())
			settings.AntipingTimeoutMin = &minutes
		}
	})
	if err != nil {
		log.Errorf("Error updating antiping settings for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to save the settings. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, "Anti-ping settings updated.", true); err != nil {
		log.Errorf("Error responding to settings antiping command: %v", err)
	}
}

func (f *Feature) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	guildID, ok := f.requireAdmin(s, i)
	if !ok {
		return
	}

	settings, err := f.settingsService.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		log.Errorf("Error loading settings for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to load the settings. Please try again.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "⚙️ Server settings",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Tickets",
				Value: strings.Join([]string{
					"Category: " + formatChannel(settings.TicketCategoryID),
					"Closed category: " + formatChannel(settings.ClosedCategoryID),
					"Log channel: " + formatChannel(settings.TicketLogChannelID),
					"Staff role: " + formatRole(settings.StaffRoleID),
				}, "\n"),
			},
			{
				Name: "Bug reports",
				Value: strings.Join([]string{
					"Input channel: " + formatChannel(settings.BugInputChannelID),
					"Registry channel: " + formatChannel(settings.BugRegistryChannelID),
					fmt.Sprintf("Ping staff: %t", settings.BugPingMode),
				}, "\n"),
			},
			{
				Name: "Anti-ping",
				Value: strings.Join([]string{
					"Window minutes: " + formatInt(settings.AntipingWindowMin),
					"Threshold: " + formatInt(settings.AntipingThreshold),
					"Timeout minutes: " + formatInt(settings.AntipingTimeoutMin),
				}, "\n"),
			},
		},
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to settings show command: %v", err)
	}
}

// requireAdmin parses the guild ID and rejects non-administrators
func (f *Feature) requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) (int64, bool) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to change settings.")
		return 0, false
	}
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return 0, false
	}
	return guildID, true
}

func formatChannel(id *int64) string {
	if id == nil {
		return "not set"
	}
	return fmt.Sprintf("<#%d>", *id)
}

func formatRole(id *int64) string {
	if id == nil {
		return "not set"
	}
	return fmt.Sprintf("<@&%d>", *id)
}

func formatInt(value *int) string {
	if value == nil {
		return "default"
	}
	return fmt.Sprintf("%d", *value)
}
