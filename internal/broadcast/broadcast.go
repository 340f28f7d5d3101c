// Package broadcast sends one message to every channel of a guild, one channel
// at a time, with a fixed pause between attempts.
package broadcast

import (
	"context"

	"tempest-bot/internal/access"

	"go.uber.org/zap"
)

type Channel struct {
	ID      string
	Name    string
	CanSend bool
}

type Job struct {
	GuildID  string
	Message  string
	Actor    access.Actor
	Channels []Channel
}

type ChannelStatus int

const (
	StatusSent ChannelStatus = iota
	StatusSkippedNoPermission
	StatusFailed
)

func (s ChannelStatus) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusSkippedNoPermission:
		return "skipped"
	default:
		return "failed"
	}
}

type ChannelResult struct {
	ChannelID string
	Status    ChannelStatus
	Err       error
}

// Summary counts always satisfy Sent+Failed+Skipped == len(Job.Channels).
type Summary struct {
	Sent    int
	Failed  int
	Skipped int
	Results []ChannelResult
}

func (s Summary) Total() int {
	return s.Sent + s.Failed + s.Skipped
}

// Attempts is the number of Send calls made.
func (s Summary) Attempts() int {
	return s.Sent + s.Failed
}

type Sender interface {
	Send(ctx context.Context, channelID, message string) error
}

type Pacer interface {
	Wait(ctx context.Context) error
}

type Controller struct {
	sender Sender
	pacer  Pacer
	gate   *access.Gate
	logger *zap.Logger
}

func NewController(sender Sender, pacer Pacer, gate *access.Gate, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{sender: sender, pacer: pacer, gate: gate, logger: logger}
}

// Broadcast requires administrator. Channels are processed in the order given;
// a failed send is recorded and the loop moves on. A pacer error is logged and
// the send is still attempted, so every sendable channel gets exactly one Send.
func (c *Controller) Broadcast(ctx context.Context, job Job) (Summary, error) {
	if err := c.gate.Require(job.Actor, access.CapAdministrator); err != nil {
		return Summary{}, err
	}

	summary := Summary{Results: make([]ChannelResult, 0, len(job.Channels))}
	attempted := 0
	for _, ch := range job.Channels {
		if !ch.CanSend {
			summary.Skipped++
			summary.Results = append(summary.Results, ChannelResult{ChannelID: ch.ID, Status: StatusSkippedNoPermission})
			continue
		}
		if attempted > 0 && c.pacer != nil {
			if err := c.pacer.Wait(ctx); err != nil {
				c.logger.Debug("broadcast pacing interrupted",
					zap.String("guild_id", job.GuildID),
					zap.String("channel_id", ch.ID),
					zap.Error(err))
			}
		}

		attempted++
		if err := c.sender.Send(ctx, ch.ID, job.Message); err != nil {
			summary.Failed++
			summary.Results = append(summary.Results, ChannelResult{ChannelID: ch.ID, Status: StatusFailed, Err: err})
			c.logger.Debug("broadcast send failed",
				zap.String("guild_id", job.GuildID),
				zap.String("channel_id", ch.ID),
				zap.Error(err))
			continue
		}
		summary.Sent++
		summary.Results = append(summary.Results, ChannelResult{ChannelID: ch.ID, Status: StatusSent})
	}

	c.logger.Info("broadcast complete",
		zap.String("guild_id", job.GuildID),
		zap.String("actor_id", job.Actor.ID),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}
