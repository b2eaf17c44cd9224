package services

import (
	"errors"
	"fmt"
)

// Kind classifies a session failure.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindInvalidCredentials
	KindMalformedResponse
	KindTimeout
	KindExpiredToken
	KindInvalidInput
	KindNotAuthenticated
	KindStorage
)

var (
	ErrNetwork            = errors.New("network failure")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrTimeout            = errors.New("request timed out")
	ErrExpiredToken       = errors.New("expired or invalid token")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrStorage            = errors.New("session storage failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	case KindMalformedResponse:
		return ErrMalformedResponse
	case KindTimeout:
		return ErrTimeout
	case KindExpiredToken:
		return ErrExpiredToken
	case KindInvalidInput:
		return ErrInvalidInput
	case KindNotAuthenticated:
		return ErrNotAuthenticated
	case KindStorage:
		return ErrStorage
	}
	return nil
}

func (k Kind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by Login, Signup and UpdateProfile. Message is meant for
// the user; Err keeps the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind sentinel and the cause, so errors.Is works
// with ErrTimeout as well as with client.ErrUnauthorized.
func (e *Error) Unwrap() []error {
	return []error{e.Kind.sentinel(), e.Err}
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
