// Package users keeps the accounts of the development auth service and issues
// their access tokens.
package users

import (
	"encoding/json"
	"strconv"
	"time"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	AvatarURL    string
	IsAdmin      bool
	PasswordHash []byte
	Extra        map[string]json.RawMessage
	CreatedAt    time.Time
}

func (u *User) clone() *User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	c.Extra = make(map[string]json.RawMessage, len(u.Extra))
	for k, v := range u.Extra {
		c.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return &c
}

// Record is the user as the REST API shows it. Extra fields are included
// verbatim; the password hash never is.
func (u *User) Record() map[string]any {
	rec := make(map[string]any, len(u.Extra)+7)
	for k, v := range u.Extra {
		rec[k] = v
	}
	rec["id"] = u.ID
	rec["username"] = u.Username
	rec["email"] = u.Email
	rec["isAdmin"] = u.IsAdmin
	rec["created_at"] = u.CreatedAt.UTC().Format(time.RFC3339)
	if u.FullName != "" {
		rec["full_name"] = u.FullName
	}
	if u.AvatarURL != "" {
		rec["avatar_url"] = u.AvatarURL
	}
	return rec
}

func (u *User) idString() string {
	return strconv.FormatInt(u.ID, 10)
}
