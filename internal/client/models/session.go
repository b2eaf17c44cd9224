package models

// Status is the lifecycle state of a browser session.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusValidating    Status = "validating"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

// Settled reports whether s is a resting state a route decision can rely on.
func (s Status) Settled() bool {
	return s == StatusAuthenticated || s == StatusAnonymous
}

// Session is an immutable snapshot of the session state.
//
// Token and User are either both set (Authenticated) or both empty
// (Anonymous); while Validating they keep their previous values.
type Session struct {
	Status    Status
	Token     string
	User      *User
	LastError string

	// Busy is set while a login, signup or profile update is in flight.
	Busy bool
}

// IsAdmin is derived from the user record only.
func (s Session) IsAdmin() bool {
	return s.Status == StatusAuthenticated && s.User != nil && s.User.IsAdmin
}

// Authenticated reports whether the session is usable for protected views.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.Token != "" && s.User.Valid()
}
