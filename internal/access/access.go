// Package access decides whether a member may run a privileged action.
//
// Gate checks capability flags, Validator checks role ranks. Both are pure:
// they read the per-invocation snapshot built by the transport and never call
// out to the platform.
package access

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrHierarchyViolation = errors.New("role hierarchy violation")
	ErrSelfTarget         = fmt.Errorf("%w: cannot act on yourself", ErrHierarchyViolation)
	ErrEqualOrHigherRank  = fmt.Errorf("%w: target has an equal or higher role", ErrHierarchyViolation)

	// ErrAgentInsufficientRank is the platform ceiling: the bot cannot act on
	// members ranked at or above its own top role.
	ErrAgentInsufficientRank = errors.New("agent role is not above target")
)

type Capability uint8

const (
	CapAdministrator Capability = 1 << iota
	CapKick
	CapBan
	CapModerate
)

func (c Capability) Has(flag Capability) bool {
	return c&flag == flag
}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	if c.Has(CapAdministrator) {
		names = append(names, "administrator")
	}
	if c.Has(CapKick) {
		names = append(names, "kick")
	}
	if c.Has(CapBan) {
		names = append(names, "ban")
	}
	if c.Has(CapModerate) {
		names = append(names, "moderate")
	}
	return strings.Join(names, "|")
}

type Actor struct {
	ID           string
	Name         string
	Capabilities Capability
	Rank         int
	GuildOwner   bool
}

type Target struct {
	ID   string
	Name string
	Rank int
}

type Agent struct {
	ID   string
	Rank int
}
