package shared

// GlobalRole is the caller role asserted by the identity layer.
type GlobalRole string

const (
	RoleUser  GlobalRole = "user"
	RoleAdmin GlobalRole = "admin"
)

// Actor is the authenticated caller of a core operation.
type Actor struct {
	ID   string
	Role GlobalRole
}

func NewActor(id string, role GlobalRole) Actor {
	if role == "" {
		role = RoleUser
	}
	return Actor{ID: id, Role: role}
}

// IsGlobalAdmin reports whether the actor bypasses per-entity approver checks.
func (a Actor) IsGlobalAdmin() bool {
	return a.Role == RoleAdmin
}
