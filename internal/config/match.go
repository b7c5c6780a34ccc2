package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/nixvuln/nixvuln/nixvuln/matcher"
)

// matchConfig contains all matching-related configuration options available to the user via the application config.
type matchConfig struct {
	Workers int `yaml:"workers" json:"workers" mapstructure:"workers"` // number of derivations matched concurrently
}

func (cfg matchConfig) loadDefaultValues(v *viper.Viper) {
	v.SetDefault("match.workers", matcher.DefaultWorkers)
}

func (cfg *matchConfig) parseConfigValues() error {
	if cfg.Workers < 1 {
		return fmt.Errorf("match.workers must be at least 1 (got %d)", cfg.Workers)
	}
	return nil
}
