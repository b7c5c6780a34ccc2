package event

import "github.com/wagoodman/go-partybus"

const (
	UpdateVulnerabilityDatabase   partybus.EventType = "nixvuln-update-vulnerability-database"
	FeedSegmentLoaded             partybus.EventType = "nixvuln-feed-segment-loaded"
	VulnerabilityScanningStarted  partybus.EventType = "nixvuln-vulnerability-scanning-started"
	VulnerabilityScanningFinished partybus.EventType = "nixvuln-vulnerability-scanning-finished"
	ScanReport                    partybus.EventType = "nixvuln-scan-report"
	AppExit                       partybus.EventType = "nixvuln-app-exit"
)
