package bot

import (
	"github.com/bwmarrin/discordgo"
)

// responder answers a command. Private replies are ephemeral for slash
// commands; prefix commands have no private channel and reply in place.
type responder interface {
	// Defer acknowledges a command whose reply needs slow platform calls.
	Defer() error
	Reply(content string, private bool) error
	ReplyEmbed(embed *discordgo.MessageEmbed, private bool) error
}

type interactionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.InteractionCreate
	responded   bool
	deferred    bool
}

// Defer sends a private loading response. The next reply replaces it.
func (r *interactionResponder) Defer() error {
	if r.responded {
		return nil
	}
	err := r.session.InteractionRespond(r.interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err == nil {
		r.responded = true
		r.deferred = true
	}
	return err
}

func (r *interactionResponder) Reply(content string, private bool) error {
	return r.send(&discordgo.InteractionResponseData{Content: content}, private)
}

func (r *interactionResponder) ReplyEmbed(embed *discordgo.MessageEmbed, private bool) error {
	if embed == nil {
		return r.Reply("No response available.", private)
	}
	return r.send(&discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}, private)
}

// send uses the initial response once and follow-up messages after that.
func (r *interactionResponder) send(data *discordgo.InteractionResponseData, private bool) error {
	flags := discordgo.MessageFlags(0)
	if private {
		flags = discordgo.MessageFlagsEphemeral
	}
	if r.deferred {
		r.deferred = false
		if private {
			_, err := r.session.InteractionResponseEdit(r.interaction.Interaction, &discordgo.WebhookEdit{
				Content: &data.Content,
				Embeds:  &data.Embeds,
			})
			return err
		}
		// the loading response is ephemeral, so a public reply replaces it
		if err := r.session.InteractionResponseDelete(r.interaction.Interaction); err != nil {
			return err
		}
	}
	if r.responded {
		_, err := r.session.FollowupMessageCreate(r.interaction.Interaction, true, &discordgo.WebhookParams{
			Content: data.Content,
			Embeds:  data.Embeds,
			Flags:   flags,
		})
		return err
	}
	data.Flags = flags
	err := r.session.InteractionRespond(r.interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err == nil {
		r.responded = true
	}
	return err
}

type messageResponder struct {
	messages messenger
	message  *discordgo.Message
}

func (r *messageResponder) Defer() error {
	return r.messages.Typing(r.message.ChannelID)
}

func (r *messageResponder) Reply(content string, _ bool) error {
	return r.messages.Reply(r.message.ChannelID, content, r.message.Reference())
}

func (r *messageResponder) ReplyEmbed(embed *discordgo.MessageEmbed, _ bool) error {
	return r.messages.ReplyEmbed(r.message.ChannelID, embed, r.message.Reference())
}
