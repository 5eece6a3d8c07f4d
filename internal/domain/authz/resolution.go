package authz

import (
	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/policy"
)

// Side is one owning entity whose creator and administrators may approve.
type Side struct {
	Role     policy.Role
	Kind     league.EntityKind
	EntityID string
	Users    []string
}

func (s Side) Contains(userID string) bool {
	for _, id := range s.Users {
		if id == userID {
			return true
		}
	}
	return false
}

// Resolution is the partitioned approver set of a target.
type Resolution struct {
	Sides []Side
}

// All returns the union of every side's users, in side order, without duplicates.
func (r Resolution) All() []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, side := range r.Sides {
		for _, id := range side.Users {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result
}

func (r Resolution) Contains(userID string) bool {
	for _, side := range r.Sides {
		if side.Contains(userID) {
			return true
		}
	}
	return false
}

// Excluding keeps only the sides userID does not belong to.
func (r Resolution) Excluding(userID string) Resolution {
	sides := make([]Side, 0, len(r.Sides))
	for _, side := range r.Sides {
		if !side.Contains(userID) {
			sides = append(sides, side)
		}
	}
	return Resolution{Sides: sides}
}

// WithoutUser removes userID from every side, keeping the sides themselves.
func (r Resolution) WithoutUser(userID string) Resolution {
	sides := make([]Side, 0, len(r.Sides))
	for _, side := range r.Sides {
		users := make([]string, 0, len(side.Users))
		for _, id := range side.Users {
			if id != userID {
				users = append(users, id)
			}
		}
		side.Users = users
		sides = append(sides, side)
	}
	return Resolution{Sides: sides}
}

// WithRoles keeps the sides whose role is listed.
func (r Resolution) WithRoles(roles []policy.Role) Resolution {
	sides := make([]Side, 0, len(r.Sides))
	for _, side := range r.Sides {
		for _, role := range roles {
			if side.Role == role {
				sides = append(sides, side)
				break
			}
		}
	}
	return Resolution{Sides: sides}
}

// SidesOf returns the sides userID belongs to.
func (r Resolution) SidesOf(userID string) []Side {
	var result []Side
	for _, side := range r.Sides {
		if side.Contains(userID) {
			result = append(result, side)
		}
	}
	return result
}
