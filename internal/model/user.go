package model

import "time"

// User status flag values stored in users.status.
const (
	StatusInactive = 0
	StatusActive   = 1
)

// User represents an application user record as stored in the `users`
// table.  PasswordHash never leaves the process: it is tagged out of JSON.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name/Surname – display names.
//	Handle       – unique login handle.
//	PasswordHash – bcrypt hashed password.
//	Status       – StatusActive or StatusInactive.
//	RoleID       – foreign key into the roles table.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Handle       string    `json:"handle"`
	PasswordHash string    `json:"-"`
	Status       int       `json:"status"`
	RoleID       uint64    `json:"roleId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Active reports whether the account may log in.
func (u User) Active() bool { return u.Status == StatusActive }

// Role represents a row in the `roles` table.  Name is unique.
type Role struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
}

// RoleUserLink mirrors users.role_id in the `role_user_link` table, keyed by
// user.  It is only ever written in the same transaction as the user row.
type RoleUserLink struct {
	UserID uint64
	Handle string
	RoleID uint64
}

// Identity is what a verified token says about the caller.
type Identity struct {
	UserID uint64 `json:"userId"`
	Handle string `json:"handle"`
	RoleID uint64 `json:"roleId"`
}
