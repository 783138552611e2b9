package model

import "time"

// RoleUser is the only role issued at registration.
const RoleUser = "USER"

// User represents an account row in the `users` table.  Games submitted
// by the user are not embedded; they are loaded by submitter id when
// needed (see GameRepo.ListBySubmitter).
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name (letters only).
//  PasswordHash – bcrypt hashed password.
//  Role         – role name carried in issued tokens.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}
