package economy

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, ok := f.parseIDs(s, i)
	if !ok {
		return
	}

	target := i.Member.User
	opts := common.OptionMap(i.ApplicationCommandData().Options)
	if opt, exists := opts["user"]; exists {
		target = opt.UserValue(s)
		parsed, err := common.ParseID(target.ID)
		if err != nil {
			log.Errorf("Error parsing target ID %s: %v", target.ID, err)
			common.RespondWithError(s, i, "Unable to process request. Please try again.")
			return
		}
		userID = parsed
	}

	wallet, err := f.economyService.Balance(ctx, guildID, userID)
	if err != nil {
		log.Errorf("Error loading wallet for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to load the balance. Please try again.")
		return
	}

	message := fmt.Sprintf("%s's current balance: **%s coins**", target.Mention(), common.FormatBalance(wallet.Balance))
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}

func (f *Feature) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, ok := f.parseIDs(s, i)
	if !ok {
		return
	}

	result, err := f.economyService.Daily(ctx, guildID, userID)
	if err != nil {
		log.Errorf("Error claiming daily for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to claim your daily reward. Please try again.")
		return
	}

	if !result.OK {
		common.RespondWithError(s, i, fmt.Sprintf("You already claimed your daily reward. Try again in **%s**.", common.FormatDuration(result.RetryAfter)))
		return
	}

	message := fmt.Sprintf("💰 You claimed **%s coins**. New balance: **%s coins**", common.FormatBalance(result.Amount), common.FormatBalance(result.NewBalance))
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to daily command: %v", err)
	}
}

func (f *Feature) handleWork(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, ok := f.parseIDs(s, i)
	if !ok {
		return
	}

	result, err := f.economyService.Work(ctx, guildID, userID)
	if err != nil {
		log.Errorf("Error claiming work for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to work right now. Please try again.")
		return
	}

	if !result.OK {
		common.RespondWithError(s, i, fmt.Sprintf("You are still tired. Try again in **%s**.", common.FormatDuration(result.RetryAfter)))
		return
	}

	message := fmt.Sprintf("💼 You worked and earned **%s coins**. New balance: **%s coins**", common.FormatBalance(result.Amount), common.FormatBalance(result.NewBalance))
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to work command: %v", err)
	}
}

func (f *Feature) handleGive(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.OptionMap(i.ApplicationCommandData().Options)

	guildID, fromID, ok := f.parseIDs(s, i)
	if !ok {
		return
	}

	var amount int64
	if opt, exists := opts["amount"]; exists {
		amount = opt.IntValue()
	}

	opt, exists := opts["user"]
	if !exists {
		common.RespondWithError(s, i, "A recipient is required.")
		return
	}
	recipient := opt.UserValue(s)
	toID, err := common.ParseID(recipient.ID)
	if err != nil {
		log.Errorf("Error parsing recipient ID %s: %v", recipient.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	reason, err := f.economyService.Give(ctx, guildID, fromID, toID, amount)
	if err != nil {
		log.Errorf("Error transferring %d coins from %d to %d: %v", amount, fromID, toID, err)
		common.RespondWithError(s, i, "Unable to process the transfer. Please try again.")
		return
	}

	switch reason {
	case models.ReasonValidationFailed:
		common.RespondWithError(s, i, "Amount must be positive and you cannot give to yourself.")
	case models.ReasonInsufficientFunds:
		common.RespondWithError(s, i, "You do not have enough coins for that.")
	default:
		message := fmt.Sprintf("✅ %s gave **%s coins** to %s", i.Member.User.Mention(), common.FormatBalance(amount), recipient.Mention())
		if err := common.Respond(s, i, message, false); err != nil {
			log.Errorf("Error responding to give command: %v", err)
		}
	}
}

func (f *Feature) handleRich(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, ok := f.parseIDs(s, i)
	if !ok {
		return
	}

	wallets, err := f.economyService.Top(ctx, guildID, 10)
	if err != nil {
		log.Errorf("Error loading wallet leaderboard for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to load the leaderboard. Please try again.")
		return
	}

	if len(wallets) == 0 {
		common.RespondWithError(s, i, "Nobody has any coins yet.")
		return
	}

	var sb strings.Builder
	for rank, wallet := range wallets {
		fmt.Fprintf(&sb, "**%d.** %s — %s coins\n", rank+1, common.FormatUserMention(wallet.UserID), common.FormatBalance(wallet.Balance))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "💰 Richest members",
		Description: sb.String(),
		Color:       0x57F287,
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to rich command: %v", err)
	}
}

func (f *Feature) parseIDs(s *discordgo.Session, i *discordgo.InteractionCreate) (guildID, userID int64, ok bool) {
	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return 0, 0, false
	}
	userID, err = common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return 0, 0, false
	}
	return guildID, userID, true
}
