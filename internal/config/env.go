package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ApplyEnv overlays FINPROJ_* environment variables onto the server and log
// sections. Unset variables leave the file values in place.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(&cfg.Server); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if err := env.Parse(&cfg.Log); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
