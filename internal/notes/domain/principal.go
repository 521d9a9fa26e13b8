package domain

// Principal is the authenticated caller, built from the store records of the
// user and tenant behind a verified token.
type Principal struct {
	UserID     string
	Email      string
	Role       Role
	TenantID   string
	TenantSlug string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
