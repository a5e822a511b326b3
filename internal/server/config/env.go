package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/userdir/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays USERDIR_* environment variables. When -env-file is
// given, that dotenv file is loaded first; variables already present in the
// process environment win over the file.
func parseEnv(config *Config, args []string) {
	if path := flagx.EnvFileFlag(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(fmt.Errorf("load env file %s: %w", path, err))
		}
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}
