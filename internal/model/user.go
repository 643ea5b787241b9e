package model

import (
	"time"
)

// User is the slice of the user document the relay touches. The rest of the
// profile is owned by the account service.
type User struct {
	ID        string     `json:"id" bson:"-"`
	FirstName string     `json:"firstName" bson:"firstName"`
	LastName  string     `json:"lastName" bson:"lastName"`
	UserName  string     `json:"userName" bson:"userName"`
	Email     string     `json:"email" bson:"email"`
	LastSeen  *time.Time `json:"lastSeen" bson:"lastSeen"`
	UpdatedAt *time.Time `json:"updatedAt" bson:"updatedAt"`
}
