package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"tempest-bot/internal/access"
	"tempest-bot/internal/broadcast"
	"tempest-bot/internal/config"
	"tempest-bot/internal/moderation"
	"tempest-bot/internal/storage"
	"tempest-bot/internal/triggers"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg      config.Config
	logger   *zap.Logger
	session  *discordgo.Session
	messages messenger
	settings storage.Settings
	triggers *triggers.Table
	gate     *access.Gate
	executor *moderation.Executor
	pacer    broadcast.Pacer
	router   *Router
}

func New(cfg config.Config, logger *zap.Logger, settings storage.Settings) (*Bot, error) {
	table, err := triggers.NewTable(cfg.TriggerEntries())
	if err != nil {
		return nil, err
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	if settings == nil {
		settings = storage.NewMemory()
	}

	gate := access.NewGate(cfg.OwnerID)
	b := &Bot{
		cfg:      cfg,
		logger:   logger,
		session:  session,
		messages: sessionMessenger{session: session},
		settings: settings,
		triggers: table,
		gate:     gate,
		pacer:    broadcast.NewFixedPacer(cfg.Broadcast.Pacing()),
	}
	b.executor = moderation.NewExecutor(
		&discordPlatform{session: session, banDeleteDays: cfg.Moderation.BanDeleteDays},
		gate,
		access.NewValidator(gate),
		moderation.Config{DefaultReason: cfg.Moderation.DefaultReason},
		logger.Named("moderation"),
	)
	b.router = NewRouter(logger).
		OnMessage("trigger_reply", b.replyTrigger).
		OnMessage("prefix_command", b.dispatchPrefixCommand).
		OnJoin("welcome", b.welcomeMember)

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	return b.registerCommands()
}

func (b *Bot) Close() {
	if b.session != nil {
		_ = b.session.Close()
	}
}

// Ready is the gateway readiness check for the health endpoint.
func (b *Bot) Ready(context.Context) error {
	if b.session == nil || !b.session.DataReady {
		return errors.New("discord gateway not ready")
	}
	return nil
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", session.State.User.Username),
		zap.Int("guilds", len(event.Guilds)),
		zap.Int("triggers", b.triggers.Len()))
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, msg *discordgo.MessageCreate) {
	b.router.DispatchMessage(context.Background(), msg)
}

func (b *Bot) onGuildMemberAdd(_ *discordgo.Session, event *discordgo.GuildMemberAdd) {
	b.router.DispatchJoin(context.Background(), event)
}

func (b *Bot) replyTrigger(_ context.Context, msg *discordgo.MessageCreate) error {
	entry, ok := b.triggers.Match(msg.Content)
	if !ok {
		return nil
	}
	if err := b.messages.Reply(msg.ChannelID, entry.Reply, msg.Reference()); err != nil {
		return err
	}
	triggerReplies.WithLabelValues(entry.Phrase).Inc()
	return nil
}

// welcomeMember posts to the guild's welcome channel, or sends a DM when the
// guild has no such channel.
func (b *Bot) welcomeMember(ctx context.Context, event *discordgo.GuildMemberAdd) error {
	guild := b.guildFor(event.GuildID)
	guildName := "the server"
	var channels []*discordgo.Channel
	if guild != nil {
		guildName = guild.Name
		channels = guild.Channels
	}
	if len(channels) == 0 {
		fetched, err := b.messages.GuildChannels(event.GuildID)
		if err == nil {
			channels = fetched
		}
	}

	if channel := findWelcomeChannel(channels, b.welcomeChannelFor(ctx, event.GuildID)); channel != nil {
		embed := b.commandEmbed("🎉 Welcome to the server!",
			fmt.Sprintf("Hello %s, welcome to **%s**!", event.User.Mention(), guildName),
			b.cfg.EmbedColors.Success,
			[]*discordgo.MessageEmbedField{{Name: "💡 Tip", Value: "Use `/help` to see what I can do!"}})
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: event.User.AvatarURL("")}
		if err := b.messages.SendEmbed(channel.ID, embed); err != nil {
			welcomesSent.WithLabelValues("failed").Inc()
			return err
		}
		welcomesSent.WithLabelValues("channel").Inc()
		return nil
	}

	if err := b.messages.SendDirect(event.User.ID, fmt.Sprintf("Welcome to **%s**! 😊", guildName)); err != nil {
		welcomesSent.WithLabelValues("failed").Inc()
		return err
	}
	welcomesSent.WithLabelValues("dm").Inc()
	return nil
}

// welcomeChannelFor returns the guild override, else the configured default.
func (b *Bot) welcomeChannelFor(ctx context.Context, guildID string) string {
	settings, found, err := b.settings.GetGuildSettings(ctx, guildID)
	if err != nil {
		b.logger.Debug("guild settings fallback", zap.String("guild_id", guildID), zap.Error(err))
		return b.cfg.WelcomeChannel
	}
	if found && settings.WelcomeChannel != "" {
		return settings.WelcomeChannel
	}
	return b.cfg.WelcomeChannel
}

// findWelcomeChannel matches a text channel by id or exact name, taking the
// first in platform order.
func findWelcomeChannel(channels []*discordgo.Channel, value string) *discordgo.Channel {
	if value == "" {
		return nil
	}
	text := make([]*discordgo.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch != nil && ch.Type == discordgo.ChannelTypeGuildText {
			text = append(text, ch)
		}
	}
	sortChannels(text)
	for _, ch := range text {
		if ch.ID == value || ch.Name == value {
			return ch
		}
	}
	return nil
}

func sortChannels(channels []*discordgo.Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		if channels[i].Position != channels[j].Position {
			return channels[i].Position < channels[j].Position
		}
		return channels[i].ID < channels[j].ID
	})
}

func (b *Bot) selfID() string {
	if b.session.State.User == nil {
		return ""
	}
	return b.session.State.User.ID
}

func (b *Bot) guildFor(guildID string) *discordgo.Guild {
	guild, err := b.session.State.Guild(guildID)
	if err == nil && guild != nil {
		return guild
	}
	guild, _ = b.session.Guild(guildID)
	return guild
}

func (b *Bot) memberForUser(guildID, userID string) *discordgo.Member {
	if userID == "" {
		return nil
	}
	member, err := b.session.State.Member(guildID, userID)
	if err == nil && member != nil {
		return member
	}
	member, _ = b.session.GuildMember(guildID, userID)
	return member
}
