package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var triggerReplies = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tempest_trigger_replies_total",
	Help: "Number of keyword trigger replies sent",
}, []string{"phrase"})

var commandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tempest_commands_total",
	Help: "Number of commands handled, by command and source",
}, []string{"command", "source"})

var moderationActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tempest_moderation_actions_total",
	Help: "Moderation actions by kind and result",
}, []string{"kind", "result"})

var moderationNotices = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tempest_moderation_notices_total",
	Help: "Private notices sent before moderation actions, by delivery status",
}, []string{"kind", "status"})

var broadcastChannels = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tempest_broadcast_channels_total",
	Help: "Broadcast channel results by status",
}, []string{"status"})

var welcomesSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tempest_welcomes_total",
	Help: "Welcome messages by route",
}, []string{"route"})
