package ui

import (
	"fmt"
	"io"

	"github.com/wagoodman/go-partybus"

	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/nixvuln/matcher"
)

type badEventError struct {
	event partybus.Event
	want  string
}

func (e badEventError) Error() string {
	return fmt.Sprintf("unexpected value for event %q (wanted %s): %+v", e.event.Type, e.want, e.event.Value)
}

func handleFeedSegmentLoaded(e partybus.Event) error {
	count, ok := e.Value.(int)
	if !ok {
		return badEventError{event: e, want: "advisory count"}
	}
	log.Infof("feed segment %v: %d advisories", e.Source, count)
	return nil
}

func handleVulnerabilityScanningFinished(e partybus.Event) error {
	results, ok := e.Value.([]matcher.Result)
	if !ok {
		return badEventError{event: e, want: "match results"}
	}
	var affected int
	for _, r := range results {
		if r.Affected() {
			affected++
		}
	}
	log.Infof("scanned %d derivations, %d affected", len(results), affected)
	return nil
}

func handleScanReport(e partybus.Event, reportOutput io.Writer) error {
	report, ok := e.Value.(string)
	if !ok {
		return badEventError{event: e, want: "report text"}
	}
	_, err := io.WriteString(reportOutput, report)
	return err
}
