// Package moderation runs kick, ban and warn.
//
// Every action goes through the same sequence: check capabilities, validate
// the reason, check role hierarchy, attempt a private notice to the target,
// then perform the removal. The notice is best effort and its
// result is only recorded on the Outcome.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tempest-bot/internal/access"

	"go.uber.org/zap"
)

const DefaultReason = "No reason provided"

// Platform is the side-effecting surface the executor drives.
type Platform interface {
	Notify(ctx context.Context, userID, text string) error
	Kick(ctx context.Context, guildID, userID, auditReason string) error
	Ban(ctx context.Context, guildID, userID, auditReason string) error
}

type Config struct {
	DefaultReason string
}

type Executor struct {
	platform  Platform
	gate      *access.Gate
	validator *access.Validator
	cfg       Config
	logger    *zap.Logger
}

func NewExecutor(platform Platform, gate *access.Gate, validator *access.Validator, cfg Config, logger *zap.Logger) *Executor {
	if cfg.DefaultReason == "" {
		cfg.DefaultReason = DefaultReason
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		platform:  platform,
		gate:      gate,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Execute returns an error only when the action was rejected before any side
// effect (permission, reason, hierarchy). Platform failures after the
// checks are reported on the Outcome.
func (e *Executor) Execute(ctx context.Context, action Action) (Outcome, error) {
	if action.Kind.Capability() == 0 {
		return Outcome{Action: action}, fmt.Errorf("%w: %q", ErrUnknownKind, action.Kind)
	}
	if err := e.gate.Require(action.Actor, action.Kind.Capability()); err != nil {
		return Outcome{Action: action}, err
	}

	action.Reason = strings.TrimSpace(action.Reason)
	if action.Reason == "" {
		if action.Kind == KindWarn {
			return Outcome{Action: action}, ErrReasonRequired
		}
		action.Reason = e.cfg.DefaultReason
	}

	// warn has no self-target rule, only the rank rules
	validate := e.validator.ValidateRank
	if action.Kind.Removes() {
		validate = e.validator.Validate
	}
	if err := validate(action.Actor, action.Target, action.Agent); err != nil {
		return Outcome{Action: action}, err
	}

	logger := e.logger.With(
		zap.String("kind", string(action.Kind)),
		zap.String("guild_id", action.GuildID),
		zap.String("actor_id", action.Actor.ID),
		zap.String("target_id", action.Target.ID),
	)

	outcome := Outcome{Action: action}
	outcome.Notification, outcome.NotifyErr = e.notify(ctx, action)
	if outcome.NotifyErr != nil {
		logger.Warn("moderation notice undeliverable", zap.Error(outcome.NotifyErr))
	}

	if !action.Kind.Removes() {
		outcome.Execution = ExecSucceeded
		logger.Info("moderation action applied", zap.String("notification", outcome.Notification.String()))
		return outcome, nil
	}

	if err := e.remove(ctx, action); err != nil {
		denied := errors.Is(err, ErrPlatformDenied)
		outcome.Execution = ExecFailed
		if denied {
			outcome.Execution = ExecDenied
		}
		outcome.Err = &ExecutionError{Kind: action.Kind, Denied: denied, Err: err}
		logger.Warn("moderation action failed", zap.Bool("denied", denied), zap.Error(err))
		return outcome, nil
	}

	outcome.Execution = ExecSucceeded
	logger.Info("moderation action applied", zap.String("notification", outcome.Notification.String()))
	return outcome, nil
}

func (e *Executor) notify(ctx context.Context, action Action) (NotifyStatus, error) {
	if err := e.platform.Notify(ctx, action.Target.ID, NoticeText(action)); err != nil {
		return NotifyUndeliverable, err
	}
	return NotifyDelivered, nil
}

func (e *Executor) remove(ctx context.Context, action Action) error {
	auditReason := AuditReason(action)
	switch action.Kind {
	case KindKick:
		return e.platform.Kick(ctx, action.GuildID, action.Target.ID, auditReason)
	case KindBan:
		return e.platform.Ban(ctx, action.GuildID, action.Target.ID, auditReason)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, action.Kind)
	}
}
