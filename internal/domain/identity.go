package domain

// Identity is the read-only view of the signed-in user handed down from the
// composition root. The zero value is the anonymous user.
type Identity struct {
	Token   string // Opaque bearer token issued by the identity provider
	Subject string // User id from the token, if it could be read
	Admin   bool   // Admin claim from the token
}

// Anonymous returns the identity used when nobody is signed in.
func Anonymous() Identity {
	return Identity{}
}

// SignedIn reports whether a bearer token is present.
func (i Identity) SignedIn() bool {
	return i.Token != ""
}

// BearerHeader returns the Authorization header value, or "" when anonymous.
func (i Identity) BearerHeader() string {
	if i.Token == "" {
		return ""
	}
	return "Bearer " + i.Token
}
