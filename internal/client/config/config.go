package config

import (
	"time"

	"github.com/dmitrijs2005/userdir/internal/flagx"
)

// Config holds runtime settings for the userdir CLI.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	AccessToken        string
	RefreshToken       string

	// Args is the command name followed by its arguments.
	Args []string
}

// valueFlags lists every flag that consumes the following argument.
var valueFlags = []string{
	"-a", "-t", "-token", "-refresh", "-c", "-config",
	"--a", "--t", "--token", "--refresh", "--c", "--config",
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig builds a Config from args (without the program name): defaults,
// then an optional JSON file, then flags. Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	cfg.Args = flagx.Positional(args, valueFlags)
	return cfg, nil
}
