package moderation

import (
	"errors"
	"fmt"

	"tempest-bot/internal/access"
)

var (
	// ErrReasonRequired is the validation failure for a warn without a reason.
	ErrReasonRequired = errors.New("reason is required")
	// ErrPlatformDenied marks a platform refusal; Platform implementations
	// wrap it so the executor can tell denial from other failures.
	ErrPlatformDenied = errors.New("platform refused the action")
	ErrUnknownKind    = errors.New("unknown moderation action")
)

type Kind string

const (
	KindKick Kind = "kick"
	KindBan  Kind = "ban"
	KindWarn Kind = "warn"
)

func (k Kind) Capability() access.Capability {
	switch k {
	case KindKick:
		return access.CapKick
	case KindBan:
		return access.CapBan
	case KindWarn:
		return access.CapModerate
	default:
		return 0
	}
}

func (k Kind) PastTense() string {
	switch k {
	case KindKick:
		return "kicked"
	case KindBan:
		return "banned"
	case KindWarn:
		return "warned"
	default:
		return string(k)
	}
}

// Removes reports whether the action takes the member out of the guild.
func (k Kind) Removes() bool {
	return k == KindKick || k == KindBan
}

type Action struct {
	Kind      Kind
	GuildID   string
	GuildName string
	Actor     access.Actor
	Target    access.Target
	Agent     access.Agent
	Reason    string
}

type NotifyStatus int

const (
	NotifyNotAttempted NotifyStatus = iota
	NotifyDelivered
	NotifyUndeliverable
)

func (s NotifyStatus) String() string {
	switch s {
	case NotifyDelivered:
		return "delivered"
	case NotifyUndeliverable:
		return "undeliverable"
	default:
		return "not_attempted"
	}
}

type ExecStatus int

const (
	ExecPending ExecStatus = iota
	ExecSucceeded
	ExecDenied
	ExecFailed
)

func (s ExecStatus) String() string {
	switch s {
	case ExecSucceeded:
		return "succeeded"
	case ExecDenied:
		return "denied"
	case ExecFailed:
		return "failed"
	default:
		return "pending"
	}
}

type Outcome struct {
	Action       Action
	Notification NotifyStatus
	NotifyErr    error
	Execution    ExecStatus
	Err          error
}

func (o Outcome) Succeeded() bool {
	return o.Execution == ExecSucceeded
}

// Undelivered is true when the member could not be told about the action.
func (o Outcome) Undelivered() bool {
	return o.Notification == NotifyUndeliverable
}

// ExecutionError is a kick or ban the platform did not carry out.
type ExecutionError struct {
	Kind   Kind
	Denied bool
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.Denied {
		return fmt.Sprintf("%s denied: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
