package auth

// AdminIdentity adapts an Admin into the Identity interface for token
// generation.
type AdminIdentity struct {
	admin *Admin
}

// NewIdentityFromAdmin returns an Identity adapter for the provided admin.
func NewIdentityFromAdmin(admin *Admin) Identity {
	if admin == nil {
		return nil
	}
	return AdminIdentity{admin: admin}
}

// ID returns the admin's ID as a string.
func (a AdminIdentity) ID() string {
	if a.admin == nil {
		return ""
	}
	return a.admin.ID.String()
}

// Email returns the admin's email address.
func (a AdminIdentity) Email() string {
	if a.admin == nil {
		return ""
	}
	return a.admin.Email
}

// Name returns the admin's display name.
func (a AdminIdentity) Name() string {
	if a.admin == nil {
		return ""
	}
	return a.admin.FirstName + " " + a.admin.LastName
}
