package giveaways

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"guildkeeper/bot/common"
	"guildkeeper/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to run giveaways.")
		return
	}

	ctx := context.Background()
	opts := common.OptionMap(options)

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	createdBy, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	prize := ""
	if opt, ok := opts["prize"]; ok {
		prize = opt.StringValue()
	}
	if prize == "" {
		common.RespondWithError(s, i, "A prize is required.")
		return
	}

	minutes := int64(60)
	if opt, ok := opts["minutes"]; ok {
		minutes = opt.IntValue()
	}
	if minutes <= 0 {
		common.RespondWithError(s, i, "Duration must be positive.")
		return
	}

	winners := 1
	if opt, ok := opts["winners"]; ok {
		winners = int(opt.IntValue())
	}

	var pingRoleID *int64
	if opt, ok := opts["ping_role"]; ok {
		role := opt.RoleValue(s, i.GuildID)
		if role != nil {
			if id, err := common.ParseID(role.ID); err == nil {
				pingRoleID = &id
			}
		}
	}

	giveaway := &models.Giveaway{
		GuildID:     guildID,
		ChannelID:   channelID,
		Prize:       prize,
		WinnerCount: winners,
		EndsAt:      time.Now().Add(time.Duration(minutes) * time.Minute),
		PingRoleID:  pingRoleID,
		CreatedBy:   createdBy,
	}

	if err := f.giveawayService.Create(ctx, giveaway); err != nil {
		log.Errorf("Error creating giveaway in guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to start the giveaway. Please try again.")
		return
	}

	content := ""
	if giveaway.PingRoleID != nil {
		content = fmt.Sprintf("<@&%d>", *giveaway.PingRoleID)
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🎉 Giveaway!",
		Description: fmt.Sprintf("Prize: **%s**\nWinners: **%d**\nEnds: %s", giveaway.Prize, giveaway.WinnerCount, common.FormatDiscordTimestamp(giveaway.EndsAt, "R")),
		Color:       0xFEE75C,
	}
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Enter",
					Style:    discordgo.PrimaryButton,
					CustomID: fmt.Sprintf("giveaway_enter_%d", giveaway.ID),
					Emoji:    &discordgo.ComponentEmoji{Name: "🎉"},
				},
			},
		},
	}

	msg, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Content:    content,
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		log.Errorf("Error announcing giveaway %d: %v", giveaway.ID, err)
		common.RespondWithError(s, i, "Giveaway created but the announcement failed. Check the bot's permissions.")
		return
	}

	if messageID, err := common.ParseID(msg.ID); err == nil {
		if err := f.giveawayService.SetMessageID(ctx, giveaway.ID, messageID); err != nil {
			log.Errorf("Error recording announcement for giveaway %d: %v", giveaway.ID, err)
		}
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Giveaway #%d started.", giveaway.ID), true); err != nil {
		log.Errorf("Error responding to giveaway start: %v", err)
	}
}

func (f *Feature) handleEnter(s *discordgo.Session, i *discordgo.InteractionCreate, rawID string) {
	ctx := context.Background()

	giveawayID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "Unknown giveaway.")
		return
	}
	userID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := f.giveawayService.Enter(ctx, giveawayID, userID)
	if err != nil {
		log.Errorf("Error entering giveaway %d for user %d: %v", giveawayID, userID, err)
		common.RespondWithError(s, i, "Unable to enter the giveaway. Please try again.")
		return
	}

	if !result.Accepted {
		switch result.Reason {
		case models.ReasonNotFound:
			common.RespondWithError(s, i, "That giveaway no longer exists.")
		case models.ReasonNotRunning:
			common.RespondWithError(s, i, "That giveaway has already ended.")
		case models.ReasonDuplicate:
			common.RespondWithError(s, i, "You are already entered. Good luck!")
		default:
			common.RespondWithError(s, i, "Unable to enter the giveaway.")
		}
		return
	}

	if err := common.RespondWithSuccess(s, i, "You're in. Good luck! 🎉", true); err != nil {
		log.Errorf("Error responding to giveaway entry: %v", err)
	}
}

func (f *Feature) handleEnd(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to run giveaways.")
		return
	}

	ctx := context.Background()
	opts := common.OptionMap(options)

	var giveawayID int64
	if opt, ok := opts["id"]; ok {
		giveawayID = opt.IntValue()
	}

	result, err := f.giveawayService.End(ctx, giveawayID)
	if err != nil {
		log.Errorf("Error ending giveaway %d: %v", giveawayID, err)
		common.RespondWithError(s, i, "Unable to end the giveaway. Please try again.")
		return
	}

	if !result.OK {
		switch result.Reason {
		case models.ReasonNotFound:
			common.RespondWithError(s, i, "No giveaway with that id exists.")
		case models.ReasonNotRunning:
			common.RespondWithError(s, i, "That giveaway is not running.")
		default:
			common.RespondWithError(s, i, "Unable to end the giveaway.")
		}
		return
	}

	f.AnnounceResult(s, result)
	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Giveaway #%d ended.", giveawayID), true); err != nil {
		log.Errorf("Error responding to giveaway end: %v", err)
	}
}

func (f *Feature) handleReroll(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to run giveaways.")
		return
	}

	ctx := context.Background()
	opts := common.OptionMap(options)

	var giveawayID int64
	if opt, ok := opts["id"]; ok {
		giveawayID = opt.IntValue()
	}

	result, err := f.giveawayService.Reroll(ctx, giveawayID)
	if err != nil {
		log.Errorf("Error rerolling giveaway %d: %v", giveawayID, err)
		common.RespondWithError(s, i, "Unable to reroll the giveaway. Please try again.")
		return
	}

	if !result.OK {
		switch result.Reason {
		case models.ReasonNotFound:
			common.RespondWithError(s, i, "No giveaway with that id exists.")
		case models.ReasonNotEnded:
			common.RespondWithError(s, i, "Only ended giveaways can be rerolled.")
		default:
			common.RespondWithError(s, i, "Unable to reroll the giveaway.")
		}
		return
	}

	f.AnnounceResult(s, result)
	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Giveaway #%d rerolled.", giveawayID), true); err != nil {
		log.Errorf("Error responding to giveaway reroll: %v", err)
	}
}

func (f *Feature) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to run giveaways.")
		return
	}

	ctx := context.Background()
	opts := common.OptionMap(options)

	var giveawayID int64
	if opt, ok := opts["id"]; ok {
		giveawayID = opt.IntValue()
	}

	reason, err := f.giveawayService.Cancel(ctx, giveawayID)
	if err != nil {
		log.Errorf("Error cancelling giveaway %d: %v", giveawayID, err)
		common.RespondWithError(s, i, "Unable to cancel the giveaway. Please try again.")
		return
	}

	switch reason {
	case models.ReasonNotFound:
		common.RespondWithError(s, i, "No giveaway with that id exists.")
	case models.ReasonNotRunning:
		common.RespondWithError(s, i, "That giveaway is not running.")
	default:
		if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Giveaway #%d cancelled. No winners will be drawn.", giveawayID), false); err != nil {
			log.Errorf("Error responding to giveaway cancel: %v", err)
		}
	}
}

func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	giveaways, err := f.giveawayService.ListRunning(ctx, guildID)
	if err != nil {
		log.Errorf("Error listing giveaways for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to list giveaways. Please try again.")
		return
	}

	if len(giveaways) == 0 {
		common.RespondWithError(s, i, "No giveaways are running right now.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "🎉 Running giveaways",
		Color: 0xFEE75C,
	}
	for _, g := range giveaways {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("#%d — %s", g.ID, g.Prize),
			Value: fmt.Sprintf("%d winner(s), ends %s in <#%d>", g.WinnerCount, common.FormatDiscordTimestamp(g.EndsAt, "R"), g.ChannelID),
		})
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to giveaway list: %v", err)
	}
}

// AnnounceResult posts the winner announcement into the giveaway's channel.
// Shared between manual ends, rerolls and the deadline worker.
func (f *Feature) AnnounceResult(s *discordgo.Session, result *models.GiveawayEndResult) {
	channel := common.FormatID(result.Giveaway.ChannelID)

	var message string
	if len(result.Winners) == 0 {
		message = fmt.Sprintf("🎉 The giveaway for **%s** ended with no entries. Nobody wins this time.", result.Giveaway.Prize)
	} else {
		message = fmt.Sprintf("🎉 Congratulations %s! You won **%s**!", common.FormatUserMentions(result.Winners), result.Giveaway.Prize)
	}

	if _, err := s.ChannelMessageSend(channel, message); err != nil {
		log.Errorf("Error announcing winners for giveaway %d: %v", result.Giveaway.ID, err)
	}
}
