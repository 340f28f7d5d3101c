package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tempest-bot/internal/access"
	"tempest-bot/internal/broadcast"
	"tempest-bot/internal/moderation"
	"tempest-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sourceSlash  = "slash"
	sourcePrefix = "prefix"
)

// commandRequest is the transport-neutral form of a slash or prefix command.
type commandRequest struct {
	name      string
	source    string
	guildID   string
	channelID string
	member    *discordgo.Member
	targetID  string
	reason    string
	message   string
	channel   string
	logger    *zap.Logger
}

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := interaction.ApplicationCommandData()
	req := commandRequest{
		name:      data.Name,
		source:    sourceSlash,
		guildID:   interaction.GuildID,
		channelID: interaction.ChannelID,
		member:    interaction.Member,
	}
	for _, opt := range data.Options {
		switch opt.Name {
		case "member":
			// UserValue with a nil session only resolves the id
			if user := opt.UserValue(nil); user != nil {
				req.targetID = user.ID
			}
		case "reason":
			req.reason = opt.StringValue()
		case "message":
			req.message = opt.StringValue()
		case "channel":
			if channel := opt.ChannelValue(nil); channel != nil {
				req.channel = channel.ID
			}
		}
	}

	r := &interactionResponder{session: session, interaction: interaction}
	b.runCommand(context.Background(), req, r)
}

func (b *Bot) dispatchPrefixCommand(ctx context.Context, msg *discordgo.MessageCreate) error {
	name, args, ok := parsePrefixCommand(b.cfg.CommandPrefix, msg.Content)
	if !ok {
		return nil
	}

	req := commandRequest{
		name:      name,
		source:    sourcePrefix,
		guildID:   msg.GuildID,
		channelID: msg.ChannelID,
	}
	if msg.Member != nil {
		// message events omit the user on the member object
		member := *msg.Member
		member.User = msg.Author
		member.GuildID = msg.GuildID
		req.member = &member
	}
	r := &messageResponder{messages: b.messages, message: msg.Message}

	switch name {
	case "start", "help":
	case "broadcast":
		req.message = args
		if req.message == "" {
			return r.Reply(fmt.Sprintf("Usage: `%sbroadcast <message>`", b.cfg.CommandPrefix), true)
		}
	case "kick", "ban", "warn":
		id, rest, ok := parseUserMention(args)
		if !ok {
			return r.Reply(fmt.Sprintf("Usage: `%s%s @member [reason]`", b.cfg.CommandPrefix, name), true)
		}
		req.targetID = id
		req.reason = rest
	case "welcome":
		req.channel = parseChannelArg(args)
	default:
		return nil
	}

	b.runCommand(ctx, req, r)
	return nil
}

func (b *Bot) runCommand(ctx context.Context, req commandRequest, r responder) {
	req.logger = b.logger.With(
		zap.String("invocation_id", uuid.NewString()),
		zap.String("command", req.name),
		zap.String("source", req.source),
		zap.String("guild_id", req.guildID),
	)
	commandsHandled.WithLabelValues(req.name, req.source).Inc()

	var err error
	switch req.name {
	case "start":
		err = r.ReplyEmbed(b.startEmbed(), false)
	case "help":
		err = r.ReplyEmbed(b.helpEmbed(), true)
	case "broadcast":
		err = b.handleBroadcast(ctx, req, r)
	case "kick":
		err = b.handleModeration(ctx, req, moderation.KindKick, r)
	case "ban":
		err = b.handleModeration(ctx, req, moderation.KindBan, r)
	case "warn":
		err = b.handleModeration(ctx, req, moderation.KindWarn, r)
	case "welcome":
		err = b.handleWelcome(ctx, req, r)
	default:
		err = r.Reply("❌ Unknown command.", true)
	}
	if err != nil {
		req.logger.Warn("command response failed", zap.Error(err))
	}
}

func (b *Bot) handleModeration(ctx context.Context, req commandRequest, kind moderation.Kind, r responder) error {
	if req.guildID == "" || req.member == nil {
		return r.Reply("❌ This command only works in a server.", true)
	}
	// member lookups, the notice and the removal can outlast the ack window
	if err := r.Defer(); err != nil {
		return err
	}
	guild := b.guildFor(req.guildID)
	target := b.memberForUser(req.guildID, req.targetID)
	if target == nil || target.User == nil {
		return r.Reply("❌ Member not found.", true)
	}
	agent := b.memberForUser(req.guildID, b.selfID())

	guildName := ""
	if guild != nil {
		guildName = guild.Name
	}
	action := moderation.Action{
		Kind:      kind,
		GuildID:   req.guildID,
		GuildName: guildName,
		Actor:     actorFrom(guild, req.member),
		Target:    targetFrom(guild, target),
		Agent:     agentFrom(guild, agent),
		Reason:    req.reason,
	}

	outcome, err := b.executor.Execute(ctx, action)
	recordModeration(kind, outcome, err)
	if err != nil {
		req.logger.Info("moderation rejected", zap.String("target_id", action.Target.ID), zap.Error(err))
	}

	content, private := moderationResponse(kind, target.User.Mention(), outcome, err)
	return r.Reply(content, private)
}

func recordModeration(kind moderation.Kind, outcome moderation.Outcome, err error) {
	if err != nil {
		moderationActions.WithLabelValues(string(kind), "rejected").Inc()
		return
	}
	moderationActions.WithLabelValues(string(kind), outcome.Execution.String()).Inc()
	moderationNotices.WithLabelValues(string(kind), outcome.Notification.String()).Inc()
}

// moderationResponse maps an execution result to the reply text and whether
// the reply is private. Only successful actions are announced publicly.
func moderationResponse(kind moderation.Kind, mention string, outcome moderation.Outcome, err error) (string, bool) {
	verb := string(kind)
	switch {
	case errors.Is(err, moderation.ErrReasonRequired):
		return "❌ A reason is required to warn a member.", true
	case errors.Is(err, access.ErrPermissionDenied):
		return fmt.Sprintf("❌ You don't have permission to %s members.", verb), true
	case errors.Is(err, access.ErrSelfTarget):
		return fmt.Sprintf("❌ You can't %s yourself.", verb), true
	case errors.Is(err, access.ErrEqualOrHigherRank):
		return fmt.Sprintf("❌ You can't %s someone with equal or higher role.", verb), true
	case errors.Is(err, access.ErrAgentInsufficientRank):
		return fmt.Sprintf("❌ My role is not high enough to %s this user.", verb), true
	case err != nil:
		return fmt.Sprintf("❌ Failed to %s %s: %s", verb, mention, errorDetail(err)), true
	}

	switch outcome.Execution {
	case moderation.ExecDenied:
		return fmt.Sprintf("❌ I don't have permission to %s this user.", verb), true
	case moderation.ExecFailed:
		return fmt.Sprintf("❌ Failed to %s %s: %s", verb, mention, errorDetail(outcome.Err)), true
	}

	content := fmt.Sprintf("✅ %s has been %s.\n**Reason:** %s", mention, kind.PastTense(), outcome.Action.Reason)
	if outcome.Undelivered() {
		content += "\n_(Could not notify them by DM.)_"
	}
	return content, false
}

func (b *Bot) handleBroadcast(ctx context.Context, req commandRequest, r responder) error {
	if req.guildID == "" || req.member == nil {
		return r.Reply("❌ This command only works in a server.", true)
	}
	guild := b.guildFor(req.guildID)
	actor := actorFrom(guild, req.member)
	if err := b.gate.Require(actor, access.CapAdministrator); err != nil {
		return r.Reply("❌ You need admin permissions to use this command.", true)
	}
	if strings.TrimSpace(req.message) == "" {
		return r.Reply("❌ The broadcast message is empty.", true)
	}

	if err := r.Reply("📢 Broadcasting message...", true); err != nil {
		return err
	}

	channels, err := b.messages.GuildChannels(req.guildID)
	if err != nil {
		return r.Reply(fmt.Sprintf("❌ Could not list channels: %s", errorDetail(err)), true)
	}
	botID := b.selfID()
	targets := broadcastTargets(channels, func(channelID string) bool {
		perms, err := b.session.State.UserChannelPermissions(botID, channelID)
		if err != nil {
			return false
		}
		return perms&discordgo.PermissionViewChannel != 0 && perms&discordgo.PermissionSendMessages != 0
	})
	job := broadcast.Job{
		GuildID:  req.guildID,
		Message:  req.message,
		Actor:    actor,
		Channels: targets,
	}

	sender := &discordSender{session: b.session, author: displayName(req.member), color: b.cfg.EmbedColors.Warning}
	controller := broadcast.NewController(sender, b.pacer, b.gate, req.logger)
	summary, err := controller.Broadcast(ctx, job)
	if err != nil {
		return r.Reply("❌ You need admin permissions to use this command.", true)
	}
	for _, result := range summary.Results {
		broadcastChannels.WithLabelValues(result.Status.String()).Inc()
	}
	return r.Reply(broadcastSummaryText(summary), true)
}

// broadcastTargets keeps text and announcement channels in platform order.
func broadcastTargets(channels []*discordgo.Channel, canSend func(channelID string) bool) []broadcast.Channel {
	eligible := make([]*discordgo.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch == nil {
			continue
		}
		if ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildNews {
			continue
		}
		eligible = append(eligible, ch)
	}
	sortChannels(eligible)

	out := make([]broadcast.Channel, 0, len(eligible))
	for _, ch := range eligible {
		out = append(out, broadcast.Channel{ID: ch.ID, Name: ch.Name, CanSend: canSend(ch.ID)})
	}
	return out
}

func broadcastSummaryText(summary broadcast.Summary) string {
	text := fmt.Sprintf("✅ Broadcast complete! Message sent to %d channels.", summary.Sent)
	var extra []string
	if summary.Failed > 0 {
		extra = append(extra, fmt.Sprintf("%d failed", summary.Failed))
	}
	if summary.Skipped > 0 {
		extra = append(extra, fmt.Sprintf("%d skipped (no permission)", summary.Skipped))
	}
	if len(extra) > 0 {
		text += " (" + strings.Join(extra, ", ") + ")"
	}
	return text
}

func (b *Bot) handleWelcome(ctx context.Context, req commandRequest, r responder) error {
	if req.guildID == "" || req.member == nil {
		return r.Reply("❌ This command only works in a server.", true)
	}
	actor := actorFrom(b.guildFor(req.guildID), req.member)
	if !b.gate.Authorize(actor, access.CapAdministrator) {
		return r.Reply("❌ You need admin permissions to use this command.", true)
	}

	if req.channel == "" {
		current := b.welcomeChannelFor(ctx, req.guildID)
		return r.Reply(fmt.Sprintf("Welcome messages go to %s.", channelLabel(current)), true)
	}

	err := b.settings.UpsertGuildSettings(ctx, storage.GuildSettings{
		GuildID:        req.guildID,
		WelcomeChannel: req.channel,
		UpdatedBy:      actor.ID,
		UpdatedAt:      time.Now(),
	})
	if err != nil {
		req.logger.Warn("welcome channel update failed", zap.Error(err))
		return r.Reply("❌ Could not save the welcome channel.", true)
	}
	return r.Reply(fmt.Sprintf("✅ Welcome channel set to %s.", channelLabel(req.channel)), true)
}

func channelLabel(value string) string {
	if isSnowflake(value) {
		return "<#" + value + ">"
	}
	return "#" + value
}

func (b *Bot) startEmbed() *discordgo.MessageEmbed {
	embed := b.commandEmbed("✨ Tempest Bot", "Hello! I'm Tempest, your friendly server assistant.\nUse `/help` to see available commands.", b.cfg.EmbedColors.Info, nil)
	if user := b.session.State.User; user != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("")}
	}
	return embed
}

func (b *Bot) helpEmbed() *discordgo.MessageEmbed {
	prefix := b.cfg.CommandPrefix
	fields := []*discordgo.MessageEmbedField{
		{Name: "💬 General", Value: "`/start` - Start using the bot\n`/help` - Show this menu", Inline: false},
		{Name: "📣 Broadcast (Admin)", Value: "`/broadcast [message]` - Send announcement to all channels", Inline: false},
		{Name: "🛡️ Moderation (Admin)", Value: "`/kick [@user] [reason]`\n`/ban [@user] [reason]`\n`/warn [@user] [reason]`", Inline: false},
		{Name: "👋 Welcome (Admin)", Value: "`/welcome [channel]` - View or set the welcome channel", Inline: false},
		{Name: "⌨️ Prefix", Value: fmt.Sprintf("Every command also works as `%scommand`.", prefix), Inline: false},
	}
	embed := b.commandEmbed("📚 Tempest Commands", "", b.cfg.EmbedColors.Info, fields)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Tempest Bot • Made with ❤️"}
	return embed
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}
