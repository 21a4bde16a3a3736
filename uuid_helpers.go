package auth

// HasAdminUUID reports whether Session.GetAdminUUID will succeed.
func HasAdminUUID(session Session) bool {
	if session == nil {
		return false
	}
	_, err := session.GetAdminUUID()
	return err == nil
}
