package matcher

import (
	"context"
	"fmt"

	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"
	"golang.org/x/sync/errgroup"

	"github.com/nixvuln/nixvuln/internal/bus"
	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/nixvuln/derivation"
	"github.com/nixvuln/nixvuln/nixvuln/event"
	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

const DefaultWorkers = 4

// Monitor is published with the VulnerabilityScanningStarted event.
type Monitor struct {
	DerivationsProcessed      progress.Monitorable
	VulnerabilitiesDiscovered progress.Monitorable
}

// Result holds the advisories found for one derivation.
type Result struct {
	Derivation      derivation.Derivation         `json:"derivation"`
	Vulnerabilities []vulnerability.Vulnerability `json:"vulnerabilities"`
}

func (r Result) Affected() bool {
	return len(r.Vulnerabilities) > 0
}

func trackMatcher(total int) (*progress.Manual, *progress.Manual) {
	derivationsProcessed := progress.NewManual(int64(total))
	vulnerabilitiesDiscovered := progress.NewManual(-1)

	bus.Publish(partybus.Event{
		Type: event.VulnerabilityScanningStarted,
		Value: Monitor{
			DerivationsProcessed:      progress.Monitorable(derivationsProcessed),
			VulnerabilitiesDiscovered: progress.Monitorable(vulnerabilitiesDiscovered),
		},
	})
	return derivationsProcessed, vulnerabilitiesDiscovered
}

// FindMatches checks all derivations against the provider using up to workers goroutines. Results are in the
// order of the given derivations. The provider is only read from.
func FindMatches(ctx context.Context, provider vulnerability.Provider, derivations []derivation.Derivation, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	derivationsProcessed, vulnerabilitiesDiscovered := trackMatcher(len(derivations))
	defer derivationsProcessed.SetCompleted()
	defer vulnerabilitiesDiscovered.SetCompleted()

	results := make([]Result, len(derivations))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx := range derivations {
		idx := idx
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d := derivations[idx]
			log.Debugf("searching for vulnerability matches for derivation=%s", d)

			vulns, err := Check(provider, d)
			if err != nil {
				return fmt.Errorf("matching %s: %w", d.Name, err)
			}
			logMatches(d, vulns)

			results[idx] = Result{Derivation: d, Vulnerabilities: vulns}
			derivationsProcessed.Increment()
			vulnerabilitiesDiscovered.Add(int64(len(vulns)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	bus.Publish(partybus.Event{
		Type:  event.VulnerabilityScanningFinished,
		Value: results,
	})
	return results, nil
}

func logMatches(d derivation.Derivation, vulns []vulnerability.Vulnerability) {
	if len(vulns) == 0 {
		return
	}
	log.Debugf("found %d vulnerabilities for derivation=%s", len(vulns), d)
	for idx, v := range vulns {
		var branch = "├──"
		if idx == len(vulns)-1 {
			branch = "└──"
		}
		log.Debugf("  %s %s", branch, v.ID)
	}
}
