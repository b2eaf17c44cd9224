// Package services contains application services for the NyayGuru client.
//
// SessionManager is the session state machine of one browser context. It
// moves from Uninitialized through Validating to Authenticated or Anonymous,
// persists the token and user record together, and re-runs Initialize when
// another context changes them.
package services
