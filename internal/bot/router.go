package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type MessageHandler func(ctx context.Context, msg *discordgo.MessageCreate) error

type JoinHandler func(ctx context.Context, event *discordgo.GuildMemberAdd) error

type messageRoute struct {
	name   string
	handle MessageHandler
}

type joinRoute struct {
	name   string
	handle JoinHandler
}

// Router runs every registered handler for an event, in registration order.
// A failing handler is logged and does not stop the ones after it.
type Router struct {
	logger  *zap.Logger
	message []messageRoute
	join    []joinRoute
}

func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{logger: logger}
}

func (r *Router) OnMessage(name string, handle MessageHandler) *Router {
	r.message = append(r.message, messageRoute{name: name, handle: handle})
	return r
}

func (r *Router) OnJoin(name string, handle JoinHandler) *Router {
	r.join = append(r.join, joinRoute{name: name, handle: handle})
	return r
}

// DispatchMessage ignores bots and direct messages.
func (r *Router) DispatchMessage(ctx context.Context, msg *discordgo.MessageCreate) {
	if msg == nil || msg.Message == nil || msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}
	for _, route := range r.message {
		if err := route.handle(ctx, msg); err != nil {
			r.logger.Debug("message handler failed",
				zap.String("handler", route.name),
				zap.String("guild_id", msg.GuildID),
				zap.String("channel_id", msg.ChannelID),
				zap.Error(err))
		}
	}
}

func (r *Router) DispatchJoin(ctx context.Context, event *discordgo.GuildMemberAdd) {
	if event == nil || event.Member == nil || event.User == nil {
		return
	}
	for _, route := range r.join {
		if err := route.handle(ctx, event); err != nil {
			r.logger.Debug("join handler failed",
				zap.String("handler", route.name),
				zap.String("guild_id", event.GuildID),
				zap.String("user_id", event.User.ID),
				zap.Error(err))
		}
	}
}
