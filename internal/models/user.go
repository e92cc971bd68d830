package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserProfile lives in the "users" collection, keyed by uid.
type UserProfile struct {
	ID           string    `json:"id" bson:"_id"`
	DisplayName  string    `json:"displayName" bson:"displayName"`
	Email        string    `json:"email" bson:"email"`
	PhotoURL     string    `json:"photoURL,omitempty" bson:"photoURL,omitempty"`
	Role         string    `json:"role" bson:"role"`
	PasswordHash string    `json:"-" bson:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (u *UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ProfileSync is what an identity provider tells us about a user on sign-in.
// It never carries a role.
type ProfileSync struct {
	ID          string
	DisplayName string
	Email       string
	PhotoURL    string
}
