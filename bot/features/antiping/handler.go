package antiping

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/bot/common"
	"guildkeeper/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleMessage checks a message's mentions against the protected list and
// escalates the author when a protected user was pinged
func (f *Feature) HandleMessage(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, guildID, authorID int64) {
	if len(m.Mentions) == 0 {
		return
	}

	var mentioned []int64
	for _, user := range m.Mentions {
		id, err := common.ParseID(user.ID)
		if err != nil {
			continue
		}
		// Self-mentions are not an offense
		if id == authorID {
			continue
		}
		mentioned = append(mentioned, id)
	}
	if len(mentioned) == 0 {
		return
	}

	protected, err := f.antipingService.IsProtected(ctx, guildID, mentioned)
	if err != nil {
		log.Errorf("Error checking protected targets in guild %d: %v", guildID, err)
		return
	}
	if !protected {
		return
	}

	verdict, timeout, err := f.antipingService.HandleMention(ctx, guildID, authorID)
	if err != nil {
		log.Errorf("Error escalating mention by user %d: %v", authorID, err)
		return
	}

	switch verdict {
	case models.VerdictWarn:
		warning := fmt.Sprintf("%s ⚠️ Please do not ping protected members. Next time you will be timed out.", m.Author.Mention())
		if _, err := s.ChannelMessageSend(m.ChannelID, warning); err != nil {
			log.Errorf("Error sending antiping warning: %v", err)
		}

	case models.VerdictMute:
		until := time.Now().Add(timeout)
		if err := s.GuildMemberTimeout(m.GuildID, m.Author.ID, &until); err != nil {
			log.Errorf("Error timing out user %s for pinging protected members: %v", m.Author.ID, err)
		}
		notice := fmt.Sprintf("%s 🔇 You have been timed out for **%s** for pinging protected members.", m.Author.Mention(), common.FormatDuration(timeout))
		if _, err := s.ChannelMessageSend(m.ChannelID, notice); err != nil {
			log.Errorf("Error sending antiping mute notice: %v", err)
		}
	}
}

func (f *Feature) handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to manage the protected list.")
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
	addedBy, err := common.ParseID(i.Member.User.ID)
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

	reason, err := f.antipingService.AddTarget(ctx, guildID, targetID, addedBy)
	if err != nil {
		log.Errorf("Error protecting user %d in guild %d: %v", targetID, guildID, err)
		common.RespondWithError(s, i, "Unable to protect the user. Please try again.")
		return
	}

	if reason == models.ReasonDuplicate {
		common.RespondWithError(s, i, fmt.Sprintf("%s is already protected.", target.Mention()))
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("%s is now protected from unwanted pings.", target.Mention()), false); err != nil {
		log.Errorf("Error responding to antiping add: %v", err)
	}
}

func (f *Feature) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if i.Member == nil || !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permission to manage the protected list.")
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

	reason, err := f.antipingService.RemoveTarget(ctx, guildID, targetID)
	if err != nil {
		log.Errorf("Error unprotecting user %d in guild %d: %v", targetID, guildID, err)
		common.RespondWithError(s, i, "Unable to remove protection. Please try again.")
		return
	}

	if reason == models.ReasonNotFound {
		common.RespondWithError(s, i, fmt.Sprintf("%s is not protected.", target.Mention()))
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("%s is no longer protected.", target.Mention()), false); err != nil {
		log.Errorf("Error responding to antiping remove: %v", err)
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

	targets, err := f.antipingService.ListTargets(ctx, guildID)
	if err != nil {
		log.Errorf("Error listing protected targets for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to list protected members. Please try again.")
		return
	}

	if len(targets) == 0 {
		if err := common.Respond(s, i, "🛡️ Nobody is protected yet.", true); err != nil {
			log.Errorf("Error responding to antiping list: %v", err)
		}
		return
	}

	ids := make([]int64, len(targets))
	for idx, target := range targets {
		ids[idx] = target.UserID
	}

	message := fmt.Sprintf("🛡️ Protected members: %s", common.FormatUserMentions(ids))
	if err := common.Respond(s, i, message, true); err != nil {
		log.Errorf("Error responding to antiping list: %v", err)
	}
}
