package ui

import (
	"io"

	"github.com/wagoodman/go-partybus"

	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/nixvuln/event"
)

type loggerUI struct {
	unsubscribe  func() error
	reportOutput io.Writer
}

// NewLoggerUI writes all events to the common application logger and writes the final report to the given writer.
func NewLoggerUI(reportWriter io.Writer) UI {
	return &loggerUI{
		reportOutput: reportWriter,
	}
}

func (l *loggerUI) Setup(unsubscribe func() error) error {
	l.unsubscribe = unsubscribe
	return nil
}

func (l loggerUI) Handle(e partybus.Event) error {
	switch e.Type {
	case event.UpdateVulnerabilityDatabase:
		log.Info("updating the vulnerability database")
		return nil
	case event.FeedSegmentLoaded:
		if err := handleFeedSegmentLoaded(e); err != nil {
			log.Warnf("unable to show feed segment event: %+v", err)
		}
		return nil
	case event.VulnerabilityScanningStarted:
		log.Info("scanning derivations for vulnerabilities")
		return nil
	case event.VulnerabilityScanningFinished:
		if err := handleVulnerabilityScanningFinished(e); err != nil {
			log.Warnf("unable to show scan finished event: %+v", err)
		}
		return nil
	case event.ScanReport:
		if err := handleScanReport(e, l.reportOutput); err != nil {
			log.Warnf("unable to show report: %+v", err)
		}
	case event.AppExit:
	// ignore all other events
	default:
		return nil
	}

	// this is the last expected event, stop listening to events
	return l.unsubscribe()
}

func (l loggerUI) Teardown(_ bool) error {
	return nil
}
