// Package cli provides the interactive NyayGuru session client.
//
// One process plays one browser context: it opens the shared session store,
// validates the stored token, follows writes made by other processes on the
// same store and runs a REPL. Navigation commands go through the route guard;
// an admin session is sent to the admin dashboard automatically.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
