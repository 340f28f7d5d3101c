package bot

import (
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
)

func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "start",
			Description: "Start interacting with Tempest",
		},
		{
			Name:        "help",
			Description: "Show all available commands",
		},
		{
			Name:        "broadcast",
			Description: "Broadcast a message to all text channels (Admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Message to broadcast",
					Required:    true,
				},
			},
		},
		{
			Name:        "kick",
			Description: "Kick a member from the server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to kick",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for kicking",
					Required:    false,
				},
			},
		},
		{
			Name:        "ban",
			Description: "Ban a member from the server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to ban",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for banning",
					Required:    false,
				},
			},
		},
		{
			Name:        "warn",
			Description: "Warn a member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to warn",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for warning",
					Required:    true,
				},
			},
		},
		{
			Name:        "welcome",
			Description: "View or set the welcome channel (Admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Channel for welcome messages",
					Required:     false,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
			},
		},
	}
}

func (b *Bot) registerCommands() error {
	commands := commandDefinitions()

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, "", cmd.ID)
	}
	return nil
}

// parsePrefixCommand splits "!kick @user spam" into ("kick", "@user spam").
func parsePrefixCommand(prefix, content string) (name, args string, ok bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}
	name, args = splitFirst(content[len(prefix):])
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), args, true
}

// parseUserMention accepts <@id>, <@!id> or a bare id as the first token.
func parseUserMention(args string) (id, rest string, ok bool) {
	token, rest := splitFirst(args)
	if strings.HasPrefix(token, "<@") && strings.HasSuffix(token, ">") {
		token = strings.TrimPrefix(strings.TrimSuffix(token[2:], ">"), "!")
	}
	if !isSnowflake(token) {
		return "", strings.TrimSpace(args), false
	}
	return token, rest, true
}

// parseChannelArg accepts <#id>, a bare id, or a channel name with or without #.
func parseChannelArg(args string) string {
	token, _ := splitFirst(args)
	if strings.HasPrefix(token, "<#") && strings.HasSuffix(token, ">") {
		return token[2 : len(token)-1]
	}
	return strings.TrimPrefix(token, "#")
}

func splitFirst(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

func isSnowflake(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
