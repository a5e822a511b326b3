package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/userdir/internal/flagx"
)

// parseFlags overlays cfg with -a, -t, -token and -refresh. Other arguments,
// including the command name, are left for the caller.
func parseFlags(cfg *Config, args []string) error {
	own := flagx.FilterArgs(args, []string{
		"-a", "-t", "-token", "-refresh",
		"--a", "--t", "--token", "--refresh",
	})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port of the gRPC server")
	fs.StringVar(&cfg.AccessToken, "token", cfg.AccessToken, "access token")
	fs.StringVar(&cfg.RefreshToken, "refresh", cfg.RefreshToken, "refresh token")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(own); err != nil {
		return err
	}

	if *timeout <= 0 {
		return fmt.Errorf("invalid timeout %d: must be positive", *timeout)
	}
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
