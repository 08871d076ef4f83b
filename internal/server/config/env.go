package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays Config fields whose environment variable is set.
// Unset variables leave the current value untouched.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
