package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tempest-bot/internal/moderation"

	"github.com/bwmarrin/discordgo"
)

// discordPlatform carries out moderation actions through the REST API.
type discordPlatform struct {
	session       *discordgo.Session
	banDeleteDays int
}

func (p *discordPlatform) Notify(ctx context.Context, userID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	channel, err := p.session.UserChannelCreate(userID)
	if err != nil {
		return classifyError(err)
	}
	if _, err := p.session.ChannelMessageSend(channel.ID, text); err != nil {
		return classifyError(err)
	}
	return nil
}

func (p *discordPlatform) Kick(ctx context.Context, guildID, userID, auditReason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return classifyError(p.session.GuildMemberDeleteWithReason(guildID, userID, auditReason))
}

func (p *discordPlatform) Ban(ctx context.Context, guildID, userID, auditReason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return classifyError(p.session.GuildBanCreateWithReason(guildID, userID, auditReason, p.banDeleteDays))
}

// discordSender posts the broadcast announcement embed. One sender is built
// per broadcast so the footer names the author.
type discordSender struct {
	session *discordgo.Session
	author  string
	color   int
}

func (s *discordSender) Send(ctx context.Context, channelID, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	embed := &discordgo.MessageEmbed{
		Title:       "📣 Server Announcement",
		Description: message,
		Color:       s.color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Sent by " + s.author},
	}
	_, err := s.session.ChannelMessageSendEmbed(channelID, embed)
	return classifyError(err)
}

// classifyError marks permission refusals with moderation.ErrPlatformDenied.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeMissingPermissions {
		return fmt.Errorf("%w: %s", moderation.ErrPlatformDenied, restErr.Message.Message)
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %v", moderation.ErrPlatformDenied, err)
	}
	return err
}

// errorDetail is the user-facing part of a platform error.
func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Message != "" {
		return restErr.Message.Message
	}
	var execErr *moderation.ExecutionError
	if errors.As(err, &execErr) && execErr.Err != nil {
		return execErr.Err.Error()
	}
	return err.Error()
}
