package models

// User is the identity the provider vouched for. There is no local user
// record; everything we know about a user comes from the session claims.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Session is an authenticated browser session. Token is the bearer token
// forwarded to the data and realtime services.
type Session struct {
	UserID string
	Email  string
	Token  string
}

func (s *Session) User() User {
	return User{ID: s.UserID, Email: s.Email}
}
