package model

import (
	"fmt"
	"time"
)

const (
	MetadataTableName = "metadata"
	metadataRowID     = 1
)

// MetadataModel is the single row of sync bookkeeping.
type MetadataModel struct {
	ID                int    `gorm:"column:id;primary_key;auto_increment:false"`
	LastUpdate        string `gorm:"column:last_update"`
	CompactionCounter int    `gorm:"column:compaction_counter"`
}

func NewMetadataModel(lastUpdate time.Time, compactionCounter int) MetadataModel {
	m := MetadataModel{
		ID:                metadataRowID,
		CompactionCounter: compactionCounter,
	}
	if !lastUpdate.IsZero() {
		m.LastUpdate = lastUpdate.UTC().Format(time.RFC3339Nano)
	}
	return m
}

func (MetadataModel) TableName() string {
	return MetadataTableName
}

// RowID is the primary key of the only metadata row.
func (MetadataModel) RowID() int {
	return metadataRowID
}

func (m *MetadataModel) LastUpdateTime() (time.Time, error) {
	if m.LastUpdate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, m.LastUpdate)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse last update timestamp (%+v): %w", m.LastUpdate, err)
	}
	return t, nil
}
