package moderation

import (
	"context"
	"fmt"

	"guildkeeper/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleWarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to warn members.")
		return
	}

	ctx := context.Background()
	opts := common.OptionMap(i.ApplicationCommandData().Options)

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	issuerID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	opt, ok := opts["user"]
	if !ok {
		common.RespondWithError(s, i, "A user is required.")
		return
	}
	target := opt.UserValue(s)
	targetID, err := common.ParseID(target.ID)
	if err != nil {
		log.Errorf("Error parsing target ID %s: %v", target.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	reason := "No reason given"
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	total, err := f.infractionService.Warn(ctx, guildID, targetID, issuerID, reason)
	if err != nil {
		log.Errorf("Error warning user %d in guild %d: %v", targetID, guildID, err)
		common.RespondWithError(s, i, "Unable to record the warning. Please try again.")
		return
	}

	message := fmt.Sprintf("⚠️ %s has been warned: **%s** (warning #%d)", target.Mention(), reason, total)
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to warn command: %v", err)
	}
}

func (f *Feature) handleWarnings(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.OptionMap(i.ApplicationCommandData().Options)

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	opt, ok := opts["user"]
	if !ok {
		common.RespondWithError(s, i, "A user is required.")
		return
	}
	target := opt.UserValue(s)
	targetID, err := common.ParseID(target.ID)
	if err != nil {
		log.Errorf("Error parsing target ID %s: %v", target.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	infractions, err := f.infractionService.List(ctx, guildID, targetID)
	if err != nil {
		log.Errorf("Error listing warnings for user %d: %v", targetID, err)
		common.RespondWithError(s, i, "Unable to load the warnings. Please try again.")
		return
	}

	if len(infractions) == 0 {
		if err := common.Respond(s, i, fmt.Sprintf("✨ %s has a clean record.", target.Mention()), true); err != nil {
			log.Errorf("Error responding to warnings command: %v", err)
		}
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⚠️ Warnings for %s (%d)", target.Username, len(infractions)),
		Color: 0xED4245,
	}
	for _, infraction := range infractions {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  common.FormatDiscordTimestamp(infraction.CreatedAt, "f"),
			Value: fmt.Sprintf("%s — by %s", infraction.Reason, common.FormatUserMention(infraction.IssuerID)),
		})
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to warnings command: %v", err)
	}
}

func (f *Feature) handleClear(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to clear warnings.")
		return
	}

	ctx := context.Background()
	opts := common.OptionMap(i.ApplicationCommandData().Options)

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	opt, ok := opts["user"]
	if !ok {
		common.RespondWithError(s, i, "A user is required.")
		return
	}
	target := opt.UserValue(s)
	targetID, err := common.ParseID(target.ID)
	if err != nil {
		log.Errorf("Error parsing target ID %s: %v", target.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	removed, err := f.infractionService.Clear(ctx, guildID, targetID)
	if err != nil {
		log.Errorf("Error clearing warnings for user %d: %v", targetID, err)
		common.RespondWithError(s, i, "Unable to clear the warnings. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Cleared **%d** warning(s) for %s.", removed, target.Mention()), false); err != nil {
		log.Errorf("Error responding to clearwarnings command: %v", err)
	}
}
