package nixvuln

import (
	"context"

	"github.com/wagoodman/go-partybus"

	"github.com/nixvuln/nixvuln/internal/bus"
	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/nixvuln/db"
	"github.com/nixvuln/nixvuln/nixvuln/derivation"
	"github.com/nixvuln/nixvuln/nixvuln/logger"
	"github.com/nixvuln/nixvuln/nixvuln/matcher"
)

// LoadVulnerabilityDB opens the knowledge store described by cfg, refreshing it from the feed mirror first when
// update is set. Feed failures leave the store as it was; the returned store must be closed by the caller.
func LoadVulnerabilityDB(ctx context.Context, cfg db.Config, update bool) (*db.Store, error) {
	dbCurator := db.NewCurator(cfg)

	store, err := dbCurator.Open()
	if err != nil {
		return nil, err
	}

	if update {
		if _, err := dbCurator.Update(ctx, store); err != nil {
			log.CloseAndLogError(store, store.Dir())
			return nil, err
		}
	}
	return store, nil
}

// FindVulnerabilities matches every derivation against the store.
func FindVulnerabilities(ctx context.Context, store *db.Store, derivations []derivation.Derivation, workers int) ([]matcher.Result, error) {
	return matcher.FindMatches(ctx, store, derivations, workers)
}

func SetLogger(logger logger.Logger) {
	log.Log = logger
}

func SetBus(b *partybus.Bus) {
	bus.SetPublisher(b)
}
