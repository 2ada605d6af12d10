package trivia

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleMessage scores a message as an answer attempt when the channel has an
// open round. Messages in channels without a round are ignored.
func (f *Feature) HandleMessage(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, guildID, channelID, authorID int64) {
	result, err := f.triviaService.SubmitAnswer(ctx, guildID, channelID, authorID, m.Content)
	if err != nil {
		log.Errorf("Error scoring trivia answer from user %d: %v", authorID, err)
		return
	}
	if result.Reason == models.ReasonNotFound || result.Reason == models.ReasonDuplicate {
		return
	}

	if result.Correct {
		message := fmt.Sprintf("✅ %s got it right and earns **%d points** (#%d)!", m.Author.Mention(), result.Points, result.Place)
		if _, err := s.ChannelMessageSend(m.ChannelID, message); err != nil {
			log.Errorf("Error announcing correct trivia answer: %v", err)
		}
		return
	}

	// One attempt per user, so a wrong answer gets a reaction rather than spam
	if err := s.MessageReactionAdd(m.ChannelID, m.ID, "❌"); err != nil {
		log.Errorf("Error reacting to wrong trivia answer: %v", err)
	}
}

func (f *Feature) handleStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

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

	// Question fetch can hit a slow upstream API
	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring trivia start: %v", err)
		return
	}

	question, reason, err := f.triviaService.StartRound(ctx, guildID, channelID)
	if err != nil {
		log.Errorf("Error starting trivia round in channel %d: %v", channelID, err)
		common.FollowUpWithError(s, i, "Unable to fetch a question right now. Please try again.")
		return
	}
	if reason == models.ReasonDuplicate {
		common.FollowUpWithError(s, i, "A round is already open in this channel. Finish it with /trivia end.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "❓ **%s**\n\n", question.Question)
	for idx, option := range question.Options {
		fmt.Fprintf(&sb, "%c) %s\n", 'A'+idx, option)
	}
	sb.WriteString("\nType your answer in this channel. One attempt per person!")

	embed := &discordgo.MessageEmbed{
		Title:       "🧠 Trivia time!",
		Description: sb.String(),
		Color:       0xEB459E,
	}
	if question.Category != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: question.Category}
	}

	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.Errorf("Error posting trivia question: %v", err)
	}
}

func (f *Feature) handleEnd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", i.ChannelID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	question, ok := f.triviaService.EndRound(channelID)
	if !ok {
		common.RespondWithError(s, i, "No round is open in this channel.")
		return
	}

	message := fmt.Sprintf("🏁 Round over! The answer was: **%s**", question.CorrectAnswer)
	if err := common.Respond(s, i, message, false); err != nil {
		log.Errorf("Error responding to trivia end: %v", err)
	}
}

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	scores, err := f.triviaService.Leaderboard(ctx, guildID, 10)
	if err != nil {
		log.Errorf("Error loading trivia leaderboard for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to load the leaderboard. Please try again.")
		return
	}

	if len(scores) == 0 {
		common.RespondWithError(s, i, "Nobody has scored any trivia points yet.")
		return
	}

	var sb strings.Builder
	for rank, score := range scores {
		fmt.Fprintf(&sb, "**%d.** %s — %d points (%d correct)\n", rank+1, common.FormatUserMention(score.UserID), score.Points, score.Correct)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🧠 Trivia leaderboard",
		Description: sb.String(),
		Color:       0xEB459E,
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to trivia leaderboard: %v", err)
	}
}
