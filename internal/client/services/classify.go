package services

import (
	"context"
	"errors"
	"net"
	"sort"

	"github.com/dmitrijs2005/nyayguru/internal/client/client"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	msgExpired          = "Your session has expired. Please log in again."
	msgStorage          = "Could not access the saved session. Please try again."
	msgNotAuthenticated = "Please log in to update your profile."
	msgSessionEnded     = "Your session has ended. Please log in again."
	msgSessionChanged   = "Your session changed while saving. Please try again."
)

// operation holds the caller-facing wording and error kinds of one call.
type operation struct {
	name         string
	failure      string
	timeout      string
	expired      string // replaces the service detail on 401 when set
	unauthorized Kind
	rejected     Kind
}

var (
	opLogin = operation{
		name:         "login",
		failure:      "Login failed. Please try again.",
		timeout:      "Login request timed out. Please try again later.",
		unauthorized: KindInvalidCredentials,
		rejected:     KindInvalidCredentials,
	}
	opSignup = operation{
		name:         "signup",
		failure:      "Signup failed. Please try again.",
		timeout:      "Signup request timed out. Please try again later.",
		unauthorized: KindInvalidCredentials,
		rejected:     KindInvalidCredentials,
	}
	opValidate = operation{
		name:         "validate",
		failure:      "Could not verify your session.",
		timeout:      "Session check timed out.",
		expired:      msgExpired,
		unauthorized: KindExpiredToken,
		rejected:     KindExpiredToken,
	}
	opProfile = operation{
		name:         "profile update",
		failure:      "Failed to update profile. Please try again.",
		timeout:      "Profile update timed out. Please try again later.",
		unauthorized: KindExpiredToken,
		rejected:     KindInvalidInput,
	}
)

func classify(op operation, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, errTimedOut), isTimeout(err):
		return newError(KindTimeout, op.timeout, err)
	case errors.Is(err, client.ErrMalformedResponse):
		return newError(KindMalformedResponse, op.failure, err)
	case errors.Is(err, client.ErrUnauthorized):
		msg := op.expired
		if msg == "" {
			msg = client.DetailOf(err)
		}
		if msg == "" && op.unauthorized == KindExpiredToken {
			msg = msgExpired
		}
		return newError(op.unauthorized, orDefault(msg, op.failure), err)
	case errors.Is(err, client.ErrRejected):
		return newError(op.rejected, orDefault(client.DetailOf(err), op.failure), err)
	default:
		return newError(KindNetwork, orDefault(client.DetailOf(err), op.failure), err)
	}
}

// isTimeout reports a transport deadline, whichever side of the call set it.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// invalidInput reports the first failed rule, ordered by field name.
func invalidInput(err error) *Error {
	msg := err.Error()
	var verrs validation.Errors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for f := range verrs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		msg = verrs[fields[0]].Error()
	}
	return newError(KindInvalidInput, msg, err)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
