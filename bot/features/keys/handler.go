package keys

import (
	"context"
	"fmt"
	"strings"
	"time"

	"guildkeeper/bot/common"
	"guildkeeper/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleGenerate(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to generate keys.")
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
	createdBy, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	count := 1
	if opt, ok := opts["count"]; ok {
		count = int(opt.IntValue())
	}

	mode := models.KeyModeRandom
	if opt, ok := opts["mode"]; ok && opt.StringValue() == string(models.KeyModeFixed) {
		mode = models.KeyModeFixed
	}

	prizeName := ""
	if opt, ok := opts["prize"]; ok {
		prizeName = opt.StringValue()
	}

	var expiresIn time.Duration
	if opt, ok := opts["expires_hours"]; ok {
		expiresIn = time.Duration(opt.IntValue()) * time.Hour
	}

	generated, reason, err := f.keyService.GenerateKeys(ctx, guildID, createdBy, count, mode, prizeName, expiresIn)
	if err != nil {
		log.Errorf("Error generating %d keys for guild %d: %v", count, guildID, err)
		common.RespondWithError(s, i, "Unable to generate keys. Please try again.")
		return
	}

	switch reason {
	case models.ReasonValidationFailed:
		common.RespondWithError(s, i, "Invalid generation request. Check the count and mode.")
		return
	case models.ReasonPrizeMissing:
		common.RespondWithError(s, i, fmt.Sprintf("No prize named **%s** exists. Add it with /prize add first.", prizeName))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generated **%d** %s key(s):\n```\n", len(generated), mode)
	for _, key := range generated {
		sb.WriteString(key.Code)
		sb.WriteByte('\n')
	}
	sb.WriteString("```")

	// Codes are secrets, keep the response ephemeral
	if err := common.Respond(s, i, sb.String(), true); err != nil {
		log.Errorf("Error responding to key generate command: %v", err)
	}
}

func (f *Feature) handleRedeem(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	opts := common.OptionMap(options)

	code := ""
	if opt, ok := opts["code"]; ok {
		code = opt.StringValue()
	}

	userID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := f.keyService.Redeem(ctx, code, userID)
	if err != nil {
		log.Errorf("Error redeeming key for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to redeem key. Please try again.")
		return
	}

	if !result.OK {
		switch result.Reason {
		case models.ReasonNotFound:
			common.RespondWithError(s, i, "That code does not exist.")
		case models.ReasonUsed:
			common.RespondWithError(s, i, "That code has already been redeemed.")
		case models.ReasonExpired:
			common.RespondWithError(s, i, "That code has expired.")
		case models.ReasonNoPrizes:
			common.RespondWithError(s, i, "No prizes are configured for this server yet.")
		case models.ReasonPrizeMissing:
			common.RespondWithError(s, i, "The prize behind this code no longer exists. Contact staff.")
		default:
			common.RespondWithError(s, i, "Unable to redeem key.")
		}
		return
	}

	message := fmt.Sprintf("🎁 You redeemed **%s** and won: **%s**", result.Key.Code, result.Prize.Name)
	if result.Prize.Description != "" {
		message += "\n" + result.Prize.Description
	}
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to key redeem command: %v", err)
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

	total, unused, err := f.keyService.Stats(ctx, guildID)
	if err != nil {
		log.Errorf("Error loading key stats for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to load key stats. Please try again.")
		return
	}

	message := fmt.Sprintf("🔑 **%d** keys total, **%d** still unused.", total, unused)
	if err := common.Respond(s, i, message, true); err != nil {
		log.Errorf("Error responding to key stats command: %v", err)
	}
}

func (f *Feature) handlePrizeAdd(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to manage prizes.")
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

	name := ""
	if opt, ok := opts["name"]; ok {
		name = opt.StringValue()
	}
	description := ""
	if opt, ok := opts["description"]; ok {
		description = opt.StringValue()
	}
	weight := 1
	if opt, ok := opts["weight"]; ok {
		weight = int(opt.IntValue())
	}

	reason, err := f.prizeService.Add(ctx, guildID, name, description, weight)
	if err != nil {
		log.Errorf("Error adding prize %s to guild %d: %v", name, guildID, err)
		common.RespondWithError(s, i, "Unable to add prize. Please try again.")
		return
	}

	switch reason {
	case models.ReasonValidationFailed:
		common.RespondWithError(s, i, "Prize name must not be empty.")
	case models.ReasonDuplicate:
		common.RespondWithError(s, i, fmt.Sprintf("A prize named **%s** already exists.", name))
	default:
		if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Added prize **%s** (weight %d).", name, weight), true); err != nil {
			log.Errorf("Error responding to prize add command: %v", err)
		}
	}
}

func (f *Feature) handlePrizeList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	prizes, err := f.prizeService.List(ctx, guildID)
	if err != nil {
		log.Errorf("Error listing prizes for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to list prizes. Please try again.")
		return
	}

	if len(prizes) == 0 {
		common.RespondWithError(s, i, "No prizes configured yet. Add one with /prize add.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "🎁 Prize pool",
		Color: 0x5865F2,
	}
	for _, prize := range prizes {
		value := prize.Description
		if value == "" {
			value = "No description"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s (weight %d)", prize.Name, prize.Weight),
			Value: value,
		})
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to prize list command: %v", err)
	}
}

func (f *Feature) handlePrizeRemove(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to manage prizes.")
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

	name := ""
	if opt, ok := opts["name"]; ok {
		name = opt.StringValue()
	}

	reason, err := f.prizeService.Remove(ctx, guildID, name)
	if err != nil {
		log.Errorf("Error removing prize %s from guild %d: %v", name, guildID, err)
		common.RespondWithError(s, i, "Unable to remove prize. Please try again.")
		return
	}

	if reason == models.ReasonNotFound {
		common.RespondWithError(s, i, fmt.Sprintf("No prize named **%s** exists.", name))
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Removed prize **%s**.", name), true); err != nil {
		log.Errorf("Error responding to prize remove command: %v", err)
	}
}
