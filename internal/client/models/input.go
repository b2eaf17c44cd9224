package models

import (
	"errors"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// LoginInput is either Credentials or ExternalAssertion.
type LoginInput interface {
	Validate() error
	loginInput()
}

// SignupInput is either Profile or ExternalAssertion.
type SignupInput interface {
	Validate() error
	signupInput()
}

// Credentials is an identifier/secret pair typed into the login form.
type Credentials struct {
	Identifier string
	Secret     string
}

func (Credentials) loginInput() {}

func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Identifier,
			validation.Required.Error("Email is required"),
			is.Email.Error("Please enter a valid email address"),
		),
		validation.Field(&c.Secret, validation.Required.Error("Password is required")),
	)
}

// ExternalAssertion is an identity proof issued by a third-party provider
// (a Google ID token, for instance) exchanged for a session.
type ExternalAssertion struct {
	Provider string
	Token    string
}

func (ExternalAssertion) loginInput()  {}
func (ExternalAssertion) signupInput() {}

func (a ExternalAssertion) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Provider, validation.Required.Error("Identity provider is required")),
		validation.Field(&a.Token, validation.Required.Error("Identity token is required")),
	)
}

// Avatar is a profile picture uploaded right after the account is created.
type Avatar struct {
	Filename string
	Data     []byte
}

// Profile is the signup form.
type Profile struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string

	// Extra fields are sent as-is with the registration request.
	Extra Record

	Avatar *Avatar
}

func (Profile) signupInput() {}

const minPasswordLength = 8

var errWeakPassword = errors.New("Password must include uppercase, lowercase, and numbers")

func (p Profile) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email,
			validation.Required.Error("Email is required"),
			is.Email.Error("Please enter a valid email address"),
		),
		validation.Field(&p.Password,
			validation.Required.Error("Password is required"),
			validation.Length(minPasswordLength, 0).Error("Password must be at least 8 characters long"),
			validation.By(strongPassword),
		),
		validation.Field(&p.Username, validation.By(func(any) error {
			if p.DerivedUsername() == "" {
				return errors.New("Username or first and last name are required")
			}
			return nil
		})),
	)
}

// DerivedUsername is Username, or lower(first)+lower(last) when it is empty.
func (p Profile) DerivedUsername() string {
	if u := strings.TrimSpace(p.Username); u != "" {
		return u
	}
	return strings.ToLower(strings.TrimSpace(p.FirstName)) + strings.ToLower(strings.TrimSpace(p.LastName))
}

// FullName joins first and last name.
func (p Profile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

func strongPassword(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return errWeakPassword
	}
	return nil
}
