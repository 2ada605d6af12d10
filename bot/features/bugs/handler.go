package bugs

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/bot/common"
	"guildkeeper/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleMessage runs the throttled intake for messages posted in the guild's
// bug input channel. Returns true when the message was consumed as a report.
func (f *Feature) HandleMessage(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, guildID, channelID, authorID int64) bool {
	settings, err := f.settingsService.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		log.Errorf("Error loading settings for guild %d: %v", guildID, err)
		return false
	}
	if settings.BugInputChannelID == nil || *settings.BugInputChannelID != channelID {
		return false
	}

	messageID, err := common.ParseID(m.ID)
	if err != nil {
		log.Errorf("Error parsing message ID %s: %v", m.ID, err)
		return true
	}

	result, err := f.bugService.Submit(ctx, guildID, authorID, channelID, messageID, m.Content)
	if err != nil {
		log.Errorf("Error submitting bug report for user %d: %v", authorID, err)
		return true
	}

	switch result.Verdict {
	case models.VerdictOK:
		if err := s.MessageReactionAdd(m.ChannelID, m.ID, "✅"); err != nil {
			log.Errorf("Error acknowledging bug report %d: %v", result.Report.ID, err)
		}
		f.repostToRegistry(ctx, s, settings, result.Report)

	case models.VerdictWarn:
		warning := fmt.Sprintf("%s ⚠️ You are reporting bugs too quickly. Slow down or you will be timed out.", m.Author.Mention())
		if _, err := s.ChannelMessageSend(m.ChannelID, warning); err != nil {
			log.Errorf("Error sending bug throttle warning: %v", err)
		}

	case models.VerdictMute:
		until := time.Now().Add(result.Timeout)
		if err := s.GuildMemberTimeout(m.GuildID, m.Author.ID, &until); err != nil {
			log.Errorf("Error timing out user %s for bug spam: %v", m.Author.ID, err)
		}
		notice := fmt.Sprintf("%s 🔇 You have been timed out for **%s** for spamming bug reports.", m.Author.Mention(), common.FormatDuration(result.Timeout))
		if _, err := s.ChannelMessageSend(m.ChannelID, notice); err != nil {
			log.Errorf("Error sending bug mute notice: %v", err)
		}
	}

	return true
}

// repostToRegistry mirrors an accepted report into the staff registry channel
func (f *Feature) repostToRegistry(ctx context.Context, s *discordgo.Session, settings *models.GuildSettings, report *models.BugReport) {
	if settings.BugRegistryChannelID == nil {
		return
	}

	content := ""
	if settings.BugPingMode && settings.StaffRoleID != nil {
		content = fmt.Sprintf("<@&%d>", *settings.StaffRoleID)
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🐛 Bug report #%d", report.ID),
		Description: report.Content,
		Color:       0xED4245,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Reporter", Value: common.FormatUserMention(report.ReporterID), Inline: true},
			{Name: "Status", Value: string(report.Status), Inline: true},
		},
	}

	msg, err := s.ChannelMessageSendComplex(common.FormatID(*settings.BugRegistryChannelID), &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.Errorf("Error reposting bug report %d to the registry: %v", report.ID, err)
		return
	}

	if messageID, err := common.ParseID(msg.ID); err == nil {
		if err := f.bugService.SetRegistryMessage(ctx, report.ID, messageID); err != nil {
			log.Errorf("Error recording registry message for bug report %d: %v", report.ID, err)
		}
	}
}

func (f *Feature) handleResolve(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to resolve reports.")
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
	resolvedBy, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var reportID int64
	if opt, ok := opts["id"]; ok {
		reportID = opt.IntValue()
	}
	reason := "Resolved"
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	failure, err := f.bugService.Resolve(ctx, guildID, reportID, resolvedBy, reason)
	if err != nil {
		log.Errorf("Error resolving bug report %d: %v", reportID, err)
		common.RespondWithError(s, i, "Unable to resolve the report. Please try again.")
		return
	}

	switch failure {
	case models.ReasonNotFound:
		common.RespondWithError(s, i, "No bug report with that id exists in this server.")
	case models.ReasonNotOpen:
		common.RespondWithError(s, i, "That report is already resolved.")
	default:
		if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Bug report #%d resolved: %s", reportID, reason), false); err != nil {
			log.Errorf("Error responding to bug resolve: %v", err)
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

	reports, err := f.bugService.ListOpen(ctx, guildID)
	if err != nil {
		log.Errorf("Error listing bug reports for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to list bug reports. Please try again.")
		return
	}

	if len(reports) == 0 {
		if err := common.Respond(s, i, "🐛 No open bug reports. Nice.", true); err != nil {
			log.Errorf("Error responding to bug list: %v", err)
		}
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🐛 Open bug reports (%d)", len(reports)),
		Color: 0xED4245,
	}
	for _, report := range reports {
		content := report.Content
		if len(content) > 200 {
			content = content[:200] + "…"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("#%d by %d", report.ID, report.ReporterID),
			Value: content,
		})
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to bug list: %v", err)
	}
}
