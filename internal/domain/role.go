package domain

// Role is an ordered privilege level. A numerically lower value denotes a
// higher privilege; the ordering is part of the authorization contract.
type Role int

const (
	RoleAdmin Role = 1
	RoleUser  Role = 2
)

// Valid reports whether the role is one of the defined privilege levels.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Satisfies reports whether a principal holding the role meets the given
// minimum requirement. Equal or more privileged (lower value) passes.
func (r Role) Satisfies(minimum Role) bool {
	return r <= minimum
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	default:
		return "unknown"
	}
}
