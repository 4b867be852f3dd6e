package model

import "time"

// DefaultRole is assigned when a profile is first created. Later logins never rewrite it.
const DefaultRole = "user"

const RoleAdmin = "admin"

type UserProfile struct {
	UID       string    `firestore:"uid" json:"uid"`
	Email     string    `firestore:"email" json:"email"`
	Name      string    `firestore:"name" json:"name"`
	Phone     string    `firestore:"phone" json:"phone"`
	Role      string    `firestore:"role" json:"role"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
}

// Session is the authenticated caller as seen by request handlers.
type Session struct {
	UID     string
	Email   string
	Role    string
	TokenID string
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
