package users

import "time"

// User is an application account that can sign in and hold roles.
type User struct {
	ID        int64
	Username  string
	FullName  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser carries data required to create an account.
type NewUser struct {
	Username string
	FullName string
	Password string
}
