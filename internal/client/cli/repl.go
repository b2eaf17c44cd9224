package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Status(ctx context.Context) error
	Login(ctx context.Context) error
	Google(ctx context.Context, args []string) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Ping(ctx context.Context) error
	Reset(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
//	Not logged in:
//	  - help, status, login, google <id-token>, signup, open <path>, ping, reset, exit
//
//	Logged in:
//	  - help, status, profile name=value ..., open <path>, logout, ping, reset, exit
//
// Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "nyayguru %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(out)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: status, profile, open, logout, ping, reset, exit")
			} else {
				fmt.Fprintln(out, "Available commands: status, login, google, signup, open, ping, reset, exit")
			}
		case "status":
			cmdErr = a.Status(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "google":
			cmdErr = a.Google(ctx, args)
		case "signup", "register":
			cmdErr = a.Signup(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "profile":
			cmdErr = a.Profile(ctx, args)
		case "open":
			cmdErr = a.Open(ctx, args)
		case "ping":
			cmdErr = a.Ping(ctx)
		case "reset":
			cmdErr = a.Reset(ctx)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(out, "Error:", cmdErr)
		}
	}
}
