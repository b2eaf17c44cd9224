package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/nyayguru/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   auth service base URL
//	-s string   storage file
//	-t int      login/signup timeout (seconds)
//	-i int      cross-context sync interval (milliseconds)
//
// Only these flags are looked at; anything else on the command line is left
// to other components.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-i"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "auth service base URL")
	fs.StringVar(&cfg.StoragePath, "s", cfg.StoragePath, "session storage file")
	authTimeout := fs.Int("t", int(cfg.AuthTimeout.Seconds()), "login/signup timeout (in seconds)")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Milliseconds()), "sync interval (in milliseconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.AuthTimeout = time.Duration(*authTimeout) * time.Second
	cfg.SyncInterval = time.Duration(*syncInterval) * time.Millisecond
	return nil
}
