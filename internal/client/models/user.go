// Package models defines the client-side session data: the user record, the
// session snapshot, auth results and the tagged login/signup inputs.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Record is a raw user record as exchanged with the auth service. Keys the
// session does not interpret are carried through untouched.
type Record map[string]json.RawMessage

var ErrIncorrectAttribute = errors.New("profile attribute must be name=value")

// RecordFromArgs builds a Record from name=value pairs. Values that parse as
// JSON literals (numbers, booleans, null, quoted strings, objects) are kept as
// such; anything else is stored as a string.
func RecordFromArgs(args []string) (Record, error) {
	rec := make(Record, len(args))
	for _, item := range args {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrIncorrectAttribute, item)
		}
		if json.Valid([]byte(value)) {
			rec[name] = json.RawMessage(value)
			continue
		}
		b, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		rec[name] = b
	}
	return rec, nil
}

// Clone returns a copy that shares no map with r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

const (
	fieldID       = "id"
	fieldUsername = "username"
	fieldEmail    = "email"
	fieldIsAdmin  = "isAdmin"
	fieldIsAdmin2 = "is_admin"
)

// User is the authenticated account. ID, Username, Email and IsAdmin are read
// from the record; every other field stays in the record as opaque data.
type User struct {
	ID       string
	Username string
	Email    string
	IsAdmin  bool

	rawID json.RawMessage
	rest  Record
}

// Valid reports whether the record names an account. A response without a
// username is never adopted as a session user.
func (u *User) Valid() bool {
	return u != nil && strings.TrimSpace(u.Username) != ""
}

// Attr returns an opaque pass-through field.
func (u User) Attr(name string) (json.RawMessage, bool) {
	v, ok := u.rest[name]
	return v, ok
}

// Record renders the user back to its raw form, known fields included.
func (u User) Record() Record {
	rec := u.rest.Clone()
	delete(rec, fieldIsAdmin2)

	if u.ID != "" {
		// the id goes back in the form the service sent it
		if id, err := parseID(u.rawID); err == nil && id == u.ID {
			rec[fieldID] = append(json.RawMessage(nil), u.rawID...)
		} else {
			rec[fieldID], _ = json.Marshal(u.ID)
		}
	}
	rec[fieldUsername], _ = json.Marshal(u.Username)
	if u.Email != "" {
		rec[fieldEmail], _ = json.Marshal(u.Email)
	}
	rec[fieldIsAdmin], _ = json.Marshal(u.IsAdmin)
	return rec
}

// Merge overlays patch on u field by field; fields present in patch win and
// fields absent from it keep their previous values. IsAdmin is recomputed from
// the merged record. A patch carrying both isAdmin and is_admin is decided
// by isAdmin.
func (u User) Merge(patch Record) (User, error) {
	rec := u.Record()
	for k, v := range patch {
		if k == fieldIsAdmin2 {
			if _, ok := patch[fieldIsAdmin]; ok {
				continue
			}
			k = fieldIsAdmin
		}
		rec[k] = v
	}
	return UserFromRecord(rec)
}

// UserFromRecord parses the known fields of rec.
func UserFromRecord(rec Record) (User, error) {
	var u User
	u.rest = make(Record, len(rec))

	for k, v := range rec {
		switch k {
		case fieldID:
			id, err := parseID(v)
			if err != nil {
				return User{}, err
			}
			u.ID = id
			if id != "" {
				u.rawID = append(json.RawMessage(nil), bytes.TrimSpace(v)...)
			}
		case fieldUsername:
			if err := unmarshalOptional(v, &u.Username); err != nil {
				return User{}, fmt.Errorf("username: %w", err)
			}
		case fieldEmail:
			if err := unmarshalOptional(v, &u.Email); err != nil {
				return User{}, fmt.Errorf("email: %w", err)
			}
		case fieldIsAdmin, fieldIsAdmin2:
			// camelCase wins when both are present
			if k == fieldIsAdmin2 {
				if _, ok := rec[fieldIsAdmin]; ok {
					continue
				}
			}
			if err := unmarshalOptional(v, &u.IsAdmin); err != nil {
				return User{}, fmt.Errorf("isAdmin: %w", err)
			}
		default:
			u.rest[k] = append(json.RawMessage(nil), v...)
		}
	}
	if len(u.rest) == 0 {
		u.rest = nil
	}
	return u, nil
}

func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Record())
}

func (u *User) UnmarshalJSON(b []byte) error {
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	parsed, err := UserFromRecord(rec)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

func unmarshalOptional(raw json.RawMessage, dst any) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func parseID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id: %w", err)
	}
	return n.String(), nil
}
