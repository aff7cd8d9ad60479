package dto

import "net/http"

// Session is the authenticated caller of a request. It is built by the auth
// middleware and handed to services as an explicit argument.
type Session struct {
	User    User
	UID     string
	Claims  map[string]interface{}
	Headers http.Header
}

func (s Session) IsAdmin() bool {
	return s.User.Role == RoleAdmin
}

const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)
