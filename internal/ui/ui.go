package ui

import (
	"github.com/wagoodman/go-partybus"
)

// UI consumes events from the bus until the application is done.
type UI interface {
	Setup(unsubscribe func() error) error
	partybus.Handler
	Teardown(force bool) error
}
