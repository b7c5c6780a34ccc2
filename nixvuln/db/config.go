package db

import (
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/nixvuln/nixvuln/nixvuln/nvd"
)

const (
	FileName     = "vulnerability.db"
	LockFileName = "nixvuln.lock"

	// DefaultCompactionThreshold is the session count a store must exceed before it is compacted, so the
	// store is compacted on every 26th session and the counter starts over.
	DefaultCompactionThreshold = 25
)

type Config struct {
	// DBRootDir is the cache directory holding the store. A leading "~" is expanded.
	DBRootDir string
	// Mirror is the root URL of the NVD JSON 1.1 feed files.
	Mirror string
	// UpdateTimeout bounds the download of a single feed segment.
	UpdateTimeout time.Duration
	// CompactionThreshold is the number of sessions between two compactions of the store.
	CompactionThreshold int
}

func (c Config) dir() (string, error) {
	return homedir.Expand(c.DBRootDir)
}

func (c Config) mirror() string {
	if c.Mirror == "" {
		return nvd.DefaultMirror
	}
	return nvd.NormalizeMirror(c.Mirror)
}

func (c Config) compactionThreshold() int {
	if c.CompactionThreshold <= 0 {
		return DefaultCompactionThreshold
	}
	return c.CompactionThreshold
}

func dbPath(dir string) string {
	return filepath.Join(dir, FileName)
}
