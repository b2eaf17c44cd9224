// Package client talks to the NyayGuru auth service.
//
// # Overview
//
//  1. Client is the transport-agnostic contract the session manager consumes:
//     ValidateToken, Login, LoginWithAssertion, Register, UploadAvatar,
//     Logout, UpdateProfile and Ping.
//  2. HTTPClient implements it over the service's REST API. The bearer token
//     is read from a TokenSource (the local store) on every request, the way
//     the browser reads its storage, and can be overridden per call with
//     WithToken.
//  3. InitDatabase and RunMigrations bootstrap the local SQLite store with the
//     embedded goose migrations.
//
// # Error Handling
//
// Failures map to sentinel errors matched with errors.Is: ErrUnauthorized
// (401/403), ErrRejected (other 4xx), ErrUnavailable (5xx, transport errors,
// deadlines) and ErrMalformedResponse (a 2xx body missing required fields).
// Non-2xx answers are *APIError values whose Detail is the service message.
package client
