package levels

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleMessage awards message XP and announces level ups in the channel
func (f *Feature) HandleMessage(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, guildID, authorID int64) {
	newLevel, leveledUp, err := f.levelService.HandleMessage(ctx, guildID, authorID)
	if err != nil {
		log.Errorf("Error awarding XP to user %d: %v", authorID, err)
		return
	}

	if leveledUp {
		message := fmt.Sprintf("🎉 %s just reached **level %d**!", m.Author.Mention(), newLevel)
		if _, err := s.ChannelMessageSend(m.ChannelID, message); err != nil {
			log.Errorf("Error announcing level up for user %d: %v", authorID, err)
		}
	}
}

func (f *Feature) handleRank(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.OptionMap(i.ApplicationCommandData().Options)

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// Default to the caller, allow checking someone else
	target := i.Member.User
	if opt, ok := opts["user"]; ok {
		target = opt.UserValue(s)
	}
	userID, err := common.ParseID(target.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", target.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	profile, rank, err := f.levelService.Profile(ctx, guildID, userID)
	if err != nil {
		log.Errorf("Error loading level profile for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to load the profile. Please try again.")
		return
	}

	needed := models.XPNeeded(profile.Level)
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📈 %s", target.Username),
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: fmt.Sprintf("%d", profile.Level), Inline: true},
			{Name: "XP", Value: fmt.Sprintf("%d / %d", profile.XP, needed), Inline: true},
			{Name: "Rank", Value: fmt.Sprintf("#%d", rank), Inline: true},
		},
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to rank command: %v", err)
	}
}

func (f *Feature) handleTop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	profiles, err := f.levelService.Top(ctx, guildID, 10)
	if err != nil {
		log.Errorf("Error loading level leaderboard for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to load the leaderboard. Please try again.")
		return
	}

	if len(profiles) == 0 {
		common.RespondWithError(s, i, "Nobody has earned XP yet.")
		return
	}

	var sb strings.Builder
	for rank, profile := range profiles {
		fmt.Fprintf(&sb, "**%d.** %s — level %d (%d XP)\n", rank+1, common.FormatUserMention(profile.UserID), profile.Level, profile.XP)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📈 Level leaderboard",
		Description: sb.String(),
		Color:       0x5865F2,
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to levels command: %v", err)
	}
}
