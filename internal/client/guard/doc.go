// Package guard decides whether a navigation may proceed given the current
// session, and where to send the user otherwise.
//
// Decide is a pure function of the session and the access class of the
// target. Table maps concrete paths to classes; AdminRedirector implements
// the post-login jump to the admin dashboard.
package guard
