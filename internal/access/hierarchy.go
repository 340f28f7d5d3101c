package access

// Validator compares role ranks before a moderation action.
type Validator struct {
	gate *Gate
}

func NewValidator(gate *Gate) *Validator {
	return &Validator{gate: gate}
}

// Validate applies, in order: no self-targeting, then ValidateRank. Used for
// removals (kick, ban).
func (v *Validator) Validate(actor Actor, target Target, agent Agent) error {
	if actor.ID != "" && actor.ID == target.ID {
		return ErrSelfTarget
	}
	return v.ValidateRank(actor, target, agent)
}

// ValidateRank requires the target strictly below the actor (guild owner and
// configured owner are exempt) and strictly below the agent. The agent check
// has no exemptions.
func (v *Validator) ValidateRank(actor Actor, target Target, agent Agent) error {
	if !v.bypassesRank(actor) && target.Rank >= actor.Rank {
		return ErrEqualOrHigherRank
	}
	if target.Rank >= agent.Rank {
		return ErrAgentInsufficientRank
	}
	return nil
}

func (v *Validator) bypassesRank(actor Actor) bool {
	if actor.GuildOwner {
		return true
	}
	return v != nil && v.gate.IsOwner(actor)
}
