package access

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	gate := NewGate("owner")

	cases := []struct {
		name     string
		actor    Actor
		required Capability
		want     bool
	}{
		{"ban without ban capability", Actor{ID: "u1", Capabilities: CapKick | CapModerate}, CapBan, false},
		{"ban with ban capability", Actor{ID: "u1", Capabilities: CapBan}, CapBan, true},
		{"administrator implies kick", Actor{ID: "u1", Capabilities: CapAdministrator}, CapKick, true},
		{"administrator implies ban", Actor{ID: "u1", Capabilities: CapAdministrator}, CapBan, true},
		{"administrator implies moderate", Actor{ID: "u1", Capabilities: CapAdministrator}, CapModerate, true},
		{"administrator for broadcast", Actor{ID: "u1", Capabilities: CapAdministrator}, CapAdministrator, true},
		{"kick does not imply administrator", Actor{ID: "u1", Capabilities: CapKick}, CapAdministrator, false},
		{"owner without flags", Actor{ID: "owner"}, CapBan, true},
		{"no flags", Actor{ID: "u2"}, CapModerate, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, gate.Authorize(tc.actor, tc.required))
		})
	}
}

func TestAuthorizeWithoutConfiguredOwner(t *testing.T) {
	gate := NewGate("")
	assert.False(t, gate.Authorize(Actor{ID: ""}, CapBan))
	assert.False(t, gate.IsOwner(Actor{ID: ""}))
}

func TestRequireWrapsPermissionDenied(t *testing.T) {
	gate := NewGate("")
	err := gate.Require(Actor{ID: "u1", Capabilities: CapKick}, CapBan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.Contains(t, err.Error(), "ban")

	assert.NoError(t, gate.Require(Actor{ID: "u1", Capabilities: CapBan}, CapBan))
}

func TestValidateSelfTarget(t *testing.T) {
	validator := NewValidator(NewGate(""))
	err := validator.Validate(Actor{ID: "u1", Rank: 10, GuildOwner: true}, Target{ID: "u1", Rank: 1}, Agent{Rank: 20})
	assert.True(t, errors.Is(err, ErrSelfTarget))
	assert.True(t, errors.Is(err, ErrHierarchyViolation))
}

func TestValidateEqualRank(t *testing.T) {
	validator := NewValidator(NewGate(""))
	err := validator.Validate(Actor{ID: "a", Rank: 5}, Target{ID: "t", Rank: 5}, Agent{Rank: 50})
	assert.True(t, errors.Is(err, ErrEqualOrHigherRank))
	assert.True(t, errors.Is(err, ErrHierarchyViolation))
}

func TestValidateLowerRankPasses(t *testing.T) {
	validator := NewValidator(NewGate(""))
	err := validator.Validate(Actor{ID: "a", Rank: 5}, Target{ID: "t", Rank: 3}, Agent{Rank: 8})
	assert.NoError(t, err)
}

func TestValidateGuildOwnerBypassesRank(t *testing.T) {
	validator := NewValidator(NewGate(""))
	owner := Actor{ID: "a", Rank: 5, GuildOwner: true}

	assert.NoError(t, validator.Validate(owner, Target{ID: "t", Rank: 10}, Agent{Rank: 20}))

	err := validator.Validate(owner, Target{ID: "t", Rank: 9}, Agent{Rank: 8})
	assert.True(t, errors.Is(err, ErrAgentInsufficientRank))
	assert.False(t, errors.Is(err, ErrHierarchyViolation))
}

func TestValidateConfiguredOwnerBypassesRank(t *testing.T) {
	validator := NewValidator(NewGate("boss"))
	boss := Actor{ID: "boss", Rank: 1}

	assert.NoError(t, validator.Validate(boss, Target{ID: "t", Rank: 4}, Agent{Rank: 6}))
	assert.True(t, errors.Is(validator.Validate(boss, Target{ID: "t", Rank: 6}, Agent{Rank: 6}), ErrAgentInsufficientRank))
}

func TestValidateAgentCeiling(t *testing.T) {
	validator := NewValidator(NewGate(""))
	err := validator.Validate(Actor{ID: "a", Rank: 10}, Target{ID: "t", Rank: 4}, Agent{Rank: 4})
	assert.True(t, errors.Is(err, ErrAgentInsufficientRank))
}

func TestValidateRuleOrder(t *testing.T) {
	validator := NewValidator(NewGate(""))
	// rank conflict is reported before the agent ceiling
	err := validator.Validate(Actor{ID: "a", Rank: 2}, Target{ID: "t", Rank: 9}, Agent{Rank: 1})
	assert.True(t, errors.Is(err, ErrEqualOrHigherRank))
}

func TestValidateRankIgnoresSelfTarget(t *testing.T) {
	validator := NewValidator(NewGate(""))
	assert.NoError(t, validator.ValidateRank(Actor{ID: "u1", GuildOwner: true}, Target{ID: "u1", Rank: 0}, Agent{Rank: 3}))

	err := validator.ValidateRank(Actor{ID: "a", Rank: 5}, Target{ID: "t", Rank: 50}, Agent{Rank: 9})
	assert.True(t, errors.Is(err, ErrEqualOrHigherRank))

	err = validator.ValidateRank(Actor{ID: "a", Rank: 60}, Target{ID: "t", Rank: 50}, Agent{Rank: 9})
	assert.True(t, errors.Is(err, ErrAgentInsufficientRank))
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "none", Capability(0).String())
	assert.Equal(t, "kick|ban", (CapKick | CapBan).String())
}
