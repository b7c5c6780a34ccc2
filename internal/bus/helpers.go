package bus

import (
	"github.com/wagoodman/go-partybus"

	"github.com/nixvuln/nixvuln/nixvuln/event"
)

func Exit() {
	Publish(partybus.Event{
		Type: event.AppExit,
	})
}

func Report(report string) {
	Publish(partybus.Event{
		Type:  event.ScanReport,
		Value: report,
	})
}
