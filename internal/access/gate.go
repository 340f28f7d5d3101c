package access

import "fmt"

// Gate authorizes actors by capability. The configured owner passes every check.
type Gate struct {
	ownerID string
}

func NewGate(ownerID string) *Gate {
	return &Gate{ownerID: ownerID}
}

func (g *Gate) IsOwner(actor Actor) bool {
	return g != nil && g.ownerID != "" && actor.ID == g.ownerID
}

// Authorize reports whether actor holds required. Administrator implies every
// capability.
func (g *Gate) Authorize(actor Actor, required Capability) bool {
	if g.IsOwner(actor) {
		return true
	}
	if actor.Capabilities.Has(CapAdministrator) {
		return true
	}
	return required != 0 && actor.Capabilities.Has(required)
}

func (g *Gate) Require(actor Actor, required Capability) error {
	if g.Authorize(actor, required) {
		return nil
	}
	return fmt.Errorf("%w: %s required", ErrPermissionDenied, required)
}
