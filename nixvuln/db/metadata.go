package db

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"

	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/nixvuln/db/model"
)

// Metadata is the sync bookkeeping of a store.
type Metadata struct {
	// LastUpdate is the last time fresh feed content was ingested. The zero value means never.
	LastUpdate time.Time
	// CompactionCounter counts the sessions since the last compaction.
	CompactionCounter int
}

func (s *Store) Metadata() (Metadata, error) {
	var m model.MetadataModel
	result := s.db.Where("id = ?", m.RowID()).First(&m)
	if gorm.IsRecordNotFoundError(result.Error) {
		return Metadata{}, nil
	}
	if result.Error != nil {
		return Metadata{}, fmt.Errorf("unable to read metadata: %w", result.Error)
	}

	lastUpdate, err := m.LastUpdateTime()
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		LastUpdate:        lastUpdate,
		CompactionCounter: m.CompactionCounter,
	}, nil
}

func (s *Store) SetMetadata(meta Metadata) error {
	m := model.NewMetadataModel(meta.LastUpdate, meta.CompactionCounter)
	if err := s.db.Save(&m).Error; err != nil {
		return fmt.Errorf("unable to write metadata: %w", err)
	}
	return nil
}

// Validator returns the cache validator stored for a feed URL, or an empty string.
func (s *Store) Validator(url string) (string, error) {
	var m model.ValidatorModel
	result := s.db.Where("url = ?", url).First(&m)
	if gorm.IsRecordNotFoundError(result.Error) {
		return "", nil
	}
	if result.Error != nil {
		return "", fmt.Errorf("unable to read validator of %q: %w", url, result.Error)
	}
	return m.ETag, nil
}

func (s *Store) SetValidator(url, etag string) error {
	m := model.ValidatorModel{URL: url, ETag: etag}
	if err := s.db.Save(&m).Error; err != nil {
		return fmt.Errorf("unable to write validator of %q: %w", url, err)
	}
	return nil
}

// Validators returns all stored cache validators by URL.
func (s *Store) Validators() (map[string]string, error) {
	var models []model.ValidatorModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("unable to read validators: %w", err)
	}
	validators := make(map[string]string, len(models))
	for _, m := range models {
		validators[m.URL] = m.ETag
	}
	return validators, nil
}

// MaybeCompact counts one session and, once the count passes the compaction threshold, resets it and
// reclaims the space of superseded data. Query results are never affected. It must not be called inside a
// transaction.
func (s *Store) MaybeCompact() (bool, error) {
	if s.inTx {
		return false, errInTransaction
	}

	var compact bool
	err := s.Update(func(tx *Store) error {
		meta, err := tx.Metadata()
		if err != nil {
			return err
		}
		meta.CompactionCounter++
		if meta.CompactionCounter > s.compactionThreshold {
			meta.CompactionCounter = 0
			compact = true
		}
		return tx.SetMetadata(meta)
	})
	if err != nil || !compact {
		return false, err
	}

	log.Debugf("compacting vulnerability store")
	if err := s.db.Exec("VACUUM").Error; err != nil {
		return false, fmt.Errorf("unable to compact store: %w", err)
	}
	return true, nil
}
