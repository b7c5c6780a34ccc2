package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/nixvuln/nixvuln/internal/bus"
	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/nixvuln/event"
	"github.com/nixvuln/nixvuln/nixvuln/nvd"
)

const (
	// recentUpdateWindow suppresses any fetch right after a successful sync.
	recentUpdateWindow = time.Hour
	// modifiedFeedWindow is how long the "modified" segment alone is enough to catch up; NVD keeps eight days
	// of changes in it.
	modifiedFeedWindow = 7 * 24 * time.Hour
)

type archiveLoader interface {
	Mirror() string
	URL(nvd.Archive) string
	Load(ctx context.Context, a nvd.Archive, etag string) (*nvd.Result, error)
}

// Curator keeps the store in sync with the feed mirror and manages its cache directory.
type Curator struct {
	fs     afero.Fs
	cfg    Config
	loader archiveLoader
	now    func() time.Time
}

func NewCurator(cfg Config) Curator {
	return Curator{
		fs:     afero.NewOsFs(),
		cfg:    cfg,
		loader: nvd.NewLoader(cfg.mirror(), cfg.UpdateTimeout),
		now:    time.Now,
	}
}

// Open opens the store of the configured cache directory.
func (c Curator) Open() (*Store, error) {
	return Open(c.cfg)
}

// RelevantArchives lists the feed segments worth checking given the time of the last successful update.
func (c Curator) RelevantArchives(lastUpdate, now time.Time) []nvd.Archive {
	since := now.Sub(lastUpdate)
	switch {
	case since < recentUpdateWindow:
		return nil
	case since < modifiedFeedWindow:
		return []nvd.Archive{{Name: nvd.ModifiedArchive}}
	}
	return append(nvd.YearArchives(now), nvd.Archive{Name: nvd.ModifiedArchive})
}

// Update brings the store up to date and reports whether fresh feed content was ingested. All segments are
// ingested in one transaction, after which the product index is rebuilt whether or not anything changed. Segments that fail to load are logged
// and keep their previously cached content; only store failures are returned.
func (c Curator) Update(ctx context.Context, s *Store) (bool, error) {
	meta, err := s.Metadata()
	if err != nil {
		return false, err
	}

	archives := c.RelevantArchives(meta.LastUpdate, c.now())

	stage := progress.NewAtomicStage("checking for update")
	segmentProgress := progress.NewManual(int64(len(archives)))
	aggregateProgress := progress.NewAggregator(progress.DefaultStrategy, segmentProgress)
	bus.Publish(partybus.Event{
		Type: event.UpdateVulnerabilityDatabase,
		Value: progress.StagedProgressable(&struct {
			progress.Stager
			progress.Progressable
		}{
			Stager:       progress.Stager(stage),
			Progressable: progress.Progressable(aggregateProgress),
		}),
	})
	defer segmentProgress.SetCompleted()

	run := &syncRun{}
	if len(archives) == 0 {
		log.Debugf("vulnerability store was updated less than %s ago", recentUpdateWindow)
		stage.Set("up to date")
	} else {
		err = s.Update(func(tx *Store) error {
			return c.ingest(ctx, tx, archives, run, stage, segmentProgress)
		})
		if err != nil {
			return false, fmt.Errorf("unable to update vulnerability store: %w", err)
		}
		if err := run.failures.ErrorOrNil(); err != nil {
			log.Warnf("some feed segments could not be loaded, their cached content is used: %+v", err)
		}
		stage.Set("synced")
	}

	if compacted, err := s.MaybeCompact(); err != nil {
		return run.fresh, err
	} else if compacted {
		log.Infof("compacted vulnerability store")
	}
	return run.fresh, nil
}

// syncRun collects the outcome of one sync across segments.
type syncRun struct {
	fresh    bool
	failures *multierror.Error
}

// ingest loads every archive into the transaction. Segment load failures are collected on the run, store
// failures are returned.
func (c Curator) ingest(ctx context.Context, tx *Store, archives []nvd.Archive, run *syncRun, stage *progress.AtomicStage, prog *progress.Manual) error {
	var fresh bool
	for _, a := range archives {
		if err := ctx.Err(); err != nil {
			return err
		}
		stage.Set(fmt.Sprintf("loading %s", a))

		url := c.loader.URL(a)
		etag, err := tx.Validator(url)
		if err != nil {
			return err
		}

		res, err := c.loader.Load(ctx, a, etag)
		prog.Increment()
		if err != nil {
			run.failures = multierror.Append(run.failures, fmt.Errorf("segment %s: %w", a, err))
			continue
		}
		if res.NotModified {
			log.Debugf("feed segment %q is unchanged", a)
			continue
		}

		for _, v := range res.Vulnerabilities {
			if err := tx.Put(v); err != nil {
				return err
			}
		}
		if res.ETag != "" {
			if err := tx.SetValidator(url, res.ETag); err != nil {
				return err
			}
		}

		bus.Publish(partybus.Event{
			Type:   event.FeedSegmentLoaded,
			Source: a.Name,
			Value:  len(res.Vulnerabilities),
		})
		log.Infof("loaded %d advisories from feed segment %q", len(res.Vulnerabilities), a)
		fresh = true
	}

	// the index also covers records stored outside of a sync, so it is rebuilt even when nothing changed
	stage.Set("rebuilding product index")
	if err := tx.RebuildIndex(); err != nil {
		return err
	}

	if !fresh {
		return nil
	}

	meta, err := tx.Metadata()
	if err != nil {
		return err
	}
	meta.LastUpdate = c.now()
	if err := tx.SetMetadata(meta); err != nil {
		return err
	}
	run.fresh = true
	return nil
}

// Status describes the store without modifying it.
func (c Curator) Status() Status {
	dir, err := c.cfg.dir()
	if err != nil {
		return Status{Err: err}
	}
	status := Status{Location: dir, Mirror: c.loader.Mirror()}

	info, err := c.fs.Stat(dbPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			status.Err = fmt.Errorf("vulnerability store not found at %q", dir)
		} else {
			status.Err = err
		}
		return status
	}
	status.Size = info.Size()

	s, err := Open(c.cfg)
	if err != nil {
		status.Err = err
		return status
	}
	defer log.CloseAndLogError(s, dir)

	meta, err := s.Metadata()
	if err != nil {
		status.Err = err
		return status
	}
	status.LastUpdate = meta.LastUpdate
	status.CompactionCounter = meta.CompactionCounter

	if status.Records, err = s.Count(); err != nil {
		status.Err = err
		return status
	}
	validators, err := s.Validators()
	if err != nil {
		status.Err = err
		return status
	}
	status.Validators = len(validators)
	return status
}

// Delete removes the store from the cache directory. It fails with ErrStoreInUse while another process has
// the store open.
func (c Curator) Delete() error {
	dir, err := c.cfg.dir()
	if err != nil {
		return err
	}
	if _, err := c.fs.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	lock, err := acquireLock(filepath.Join(dir, LockFileName))
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.release(); err != nil {
			log.Warnf("unable to release lock of %q: %+v", dir, err)
		}
	}()

	entries, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return fmt.Errorf("unable to list %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.Name() == LockFileName {
			continue
		}
		if err := c.fs.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("unable to delete %q: %w", entry.Name(), err)
		}
	}
	return nil
}
