package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"guildkeeper/bot/common"
	"guildkeeper/bot/features/antiping"
	"guildkeeper/bot/features/bugs"
	"guildkeeper/bot/features/economy"
	"guildkeeper/bot/features/giveaways"
	"guildkeeper/bot/features/keys"
	"guildkeeper/bot/features/levels"
	"guildkeeper/bot/features/moderation"
	"guildkeeper/bot/features/settings"
	"guildkeeper/bot/features/tickets"
	"guildkeeper/bot/features/trivia"
	"guildkeeper/events"
	"guildkeeper/models"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	eventBus *events.Bus

	keysFeature       *keys.Feature
	ticketsFeature    *tickets.Feature
	giveawaysFeature  *giveaways.Feature
	bugsFeature       *bugs.Feature
	antipingFeature   *antiping.Feature
	settingsFeature   *settings.Feature
	economyFeature    *economy.Feature
	levelsFeature     *levels.Feature
	triviaFeature     *trivia.Feature
	moderationFeature *moderation.Feature
}

func New(
	config Config,
	keysFeature *keys.Feature,
	ticketsFeature *tickets.Feature,
	giveawaysFeature *giveaways.Feature,
	bugsFeature *bugs.Feature,
	antipingFeature *antiping.Feature,
	settingsFeature *settings.Feature,
	economyFeature *economy.Feature,
	levelsFeature *levels.Feature,
	triviaFeature *trivia.Feature,
	moderationFeature *moderation.Feature,
	eventBus *events.Bus,
) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMembers

	bot := &Bot{
		config:            config,
		session:           dg,
		eventBus:          eventBus,
		keysFeature:       keysFeature,
		ticketsFeature:    ticketsFeature,
		giveawaysFeature:  giveawaysFeature,
		bugsFeature:       bugsFeature,
		antipingFeature:   antipingFeature,
		settingsFeature:   settingsFeature,
		economyFeature:    economyFeature,
		levelsFeature:     levelsFeature,
		triviaFeature:     triviaFeature,
		moderationFeature: moderationFeature,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Register component interaction handlers
	dg.AddHandler(bot.handleComponents)

	// Message flow feeds tickets, bug intake, anti-ping, XP and trivia
	dg.AddHandler(bot.handleMessageCreate)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Audit trail for the events services publish after commit
	eventBus.Subscribe(events.EventTypeKeyRedeemed, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.KeyRedeemedEvent); ok {
			log.Infof("Key %s redeemed by user %d for prize %q", e.Code, e.UserID, e.PrizeName)
		}
	})
	eventBus.Subscribe(events.EventTypeTicketClosed, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.TicketClosedEvent); ok {
			log.Infof("Ticket %d (%s) closed by user %d: %s", e.TicketID, e.Kind, e.ClosedBy, e.Reason)
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// Session exposes the underlying Discord session for background workers
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// handleCommands dispatches slash commands to the owning feature
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "key":
		b.keysFeature.HandleKeyCommand(s, i)
	case "prize":
		b.keysFeature.HandlePrizeCommand(s, i)
	case "ticket":
		b.ticketsFeature.HandleCommand(s, i)
	case "giveaway":
		b.giveawaysFeature.HandleCommand(s, i)
	case "bug":
		b.bugsFeature.HandleCommand(s, i)
	case "antiping":
		b.antipingFeature.HandleCommand(s, i)
	case "settings":
		b.settingsFeature.HandleCommand(s, i)
	case "trivia":
		b.triviaFeature.HandleCommand(s, i)
	case "balance", "daily", "work", "give", "rich":
		b.economyFeature.HandleCommand(s, i)
	case "rank", "levels":
		b.levelsFeature.HandleCommand(s, i)
	case "warn", "warnings", "clearwarnings":
		b.moderationFeature.HandleCommand(s, i)
	}
}

// handleComponents dispatches button interactions to the owning feature
func (b *Bot) handleComponents(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	if b.ticketsFeature.HandleComponent(s, i) {
		return
	}
	b.giveawaysFeature.HandleComponent(s, i)
}

// handleMessageCreate feeds guild messages through the message-driven features
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		log.Errorf("Error parsing guild ID %s: %v", m.GuildID, err)
		return
	}
	channelID, err := common.ParseID(m.ChannelID)
	if err != nil {
		log.Errorf("Error parsing channel ID %s: %v", m.ChannelID, err)
		return
	}
	authorID, err := common.ParseID(m.Author.ID)
	if err != nil {
		log.Errorf("Error parsing author ID %s: %v", m.Author.ID, err)
		return
	}

	ctx := context.Background()

	var attachments []string
	for _, attachment := range m.Attachments {
		attachments = append(attachments, attachment.URL)
	}
	b.ticketsFeature.RecordMessage(ctx, channelID, &models.TicketMessage{
		AuthorID:    authorID,
		AuthorName:  m.Author.Username,
		Content:     m.Content,
		Attachments: attachments,
	})

	// A consumed bug report should not also earn XP or count as a trivia answer
	if b.bugsFeature.HandleMessage(ctx, s, m, guildID, channelID, authorID) {
		return
	}

	b.antipingFeature.HandleMessage(ctx, s, m, guildID, authorID)
	b.levelsFeature.HandleMessage(ctx, s, m, guildID, authorID)
	b.triviaFeature.HandleMessage(ctx, s, m, guildID, channelID, authorID)
}
