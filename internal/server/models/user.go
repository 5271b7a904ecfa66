// Package models holds the persisted records of the users service.
package models

import "time"

// User is the credential record. Email is stored normalized (lower-case).
// PasswordHash and PasswordSalt are never logged or returned to callers.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	PasswordSalt []byte
	FirstName    string
	LastName     string
	Role         string
	Claims       Claims
	IsActive     bool
	CreatedAt    time.Time
}

// Clone returns a deep copy so stores can hand out records without sharing
// slices with their own state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	c.PasswordSalt = append([]byte(nil), u.PasswordSalt...)
	c.Claims = u.Claims.Clone()
	return &c
}
