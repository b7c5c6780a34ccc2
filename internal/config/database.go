package config

import (
	"fmt"
	"path"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/nixvuln/nixvuln/internal"
	"github.com/nixvuln/nixvuln/nixvuln/db"
	"github.com/nixvuln/nixvuln/nixvuln/nvd"
)

type database struct {
	Dir                 string        `yaml:"cache-dir" json:"cache-dir" mapstructure:"cache-dir"`
	Mirror              string        `yaml:"mirror" json:"mirror" mapstructure:"mirror"`
	AutoUpdate          bool          `yaml:"auto-update" json:"auto-update" mapstructure:"auto-update"`
	UpdateTimeout       time.Duration `yaml:"update-timeout" json:"update-timeout" mapstructure:"update-timeout"`
	CompactionThreshold int           `yaml:"compaction-threshold" json:"compaction-threshold" mapstructure:"compaction-threshold"`
}

func (cfg database) loadDefaultValues(v *viper.Viper) {
	// e.g. ~/.cache/nixvuln
	v.SetDefault("db.cache-dir", path.Join(xdg.CacheHome, internal.ApplicationName))
	v.SetDefault("db.mirror", nvd.DefaultMirror)
	v.SetDefault("db.auto-update", true)
	v.SetDefault("db.update-timeout", nvd.DefaultTimeout)
	v.SetDefault("db.compaction-threshold", db.DefaultCompactionThreshold)
}

func (cfg *database) parseConfigValues() error {
	if cfg.UpdateTimeout <= 0 {
		return fmt.Errorf("db.update-timeout must be positive (got %s)", cfg.UpdateTimeout)
	}
	return nil
}

func (cfg database) ToCuratorConfig() db.Config {
	return db.Config{
		DBRootDir:           cfg.Dir,
		Mirror:              cfg.Mirror,
		UpdateTimeout:       cfg.UpdateTimeout,
		CompactionThreshold: cfg.CompactionThreshold,
	}
}
