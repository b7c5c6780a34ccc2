package db

import (
	"github.com/nixvuln/nixvuln/internal/log"
)

// logAdapter routes gorm's error log lines to the nixvuln logger. Errors are returned to callers as well, so
// they are only logged at debug level here.
type logAdapter struct{}

func (l *logAdapter) Print(v ...interface{}) {
	if len(v) > 0 && v[0] == "sql" {
		// statement traces are only printed in gorm's log mode, which is never enabled
		return
	}
	log.Debugf("gorm: %+v", v)
}
