package bot

import (
	"github.com/bwmarrin/discordgo"
)

// messenger is the set of message calls the event handlers and prefix
// replies make.
type messenger interface {
	Reply(channelID, content string, ref *discordgo.MessageReference) error
	ReplyEmbed(channelID string, embed *discordgo.MessageEmbed, ref *discordgo.MessageReference) error
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) error
	SendDirect(userID, content string) error
	Typing(channelID string) error
	GuildChannels(guildID string) ([]*discordgo.Channel, error)
}

type sessionMessenger struct {
	session *discordgo.Session
}

func (m sessionMessenger) Reply(channelID, content string, ref *discordgo.MessageReference) error {
	_, err := m.session.ChannelMessageSendReply(channelID, content, ref)
	return err
}

func (m sessionMessenger) ReplyEmbed(channelID string, embed *discordgo.MessageEmbed, ref *discordgo.MessageReference) error {
	_, err := m.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:    []*discordgo.MessageEmbed{embed},
		Reference: ref,
	})
	return err
}

func (m sessionMessenger) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := m.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}

func (m sessionMessenger) SendDirect(userID, content string) error {
	dm, err := m.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = m.session.ChannelMessageSend(dm.ID, content)
	return err
}

func (m sessionMessenger) Typing(channelID string) error {
	return m.session.ChannelTyping(channelID)
}

func (m sessionMessenger) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	return m.session.GuildChannels(guildID)
}
