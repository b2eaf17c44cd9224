package models

import (
	"encoding/json"
	"errors"
)

var ErrMissingToken = errors.New("response carries no token")

// AuthResult is what login, signup and assertion exchange return.
//
// The auth service answers with either "token" or "access_token", optionally
// wrapped in a "data" envelope; all shapes decode into the same value.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type authPayload struct {
	Token       string          `json:"token"`
	AccessToken string          `json:"access_token"`
	User        *User           `json:"user"`
	Data        json.RawMessage `json:"data"`
}

func (a *AuthResult) UnmarshalJSON(b []byte) error {
	var p authPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}

	if p.Token == "" && p.AccessToken == "" && p.User == nil && len(p.Data) > 0 {
		var inner AuthResult
		if err := json.Unmarshal(p.Data, &inner); err != nil {
			return err
		}
		*a = inner
		return nil
	}

	a.Token = p.Token
	if a.Token == "" {
		a.Token = p.AccessToken
	}
	a.User = p.User
	return nil
}

// Validate checks that the result can be adopted as a session.
func (a *AuthResult) Validate() error {
	if a == nil || a.Token == "" {
		return ErrMissingToken
	}
	if !a.User.Valid() {
		return ErrMissingUser
	}
	return nil
}

var ErrMissingUser = errors.New("response carries no valid user")
