package models

// Principal is the authenticated caller threaded through service operations.
type Principal struct {
	UserID uint
	Role   Role
}

// Authenticated reports whether the principal carries a user id and a known role.
func (p Principal) Authenticated() bool {
	return p.UserID != 0 && p.Role != ""
}

// Is reports whether the principal holds the given role.
func (p Principal) Is(role Role) bool {
	return p.Role == role
}
