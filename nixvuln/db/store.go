package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite" // provide the sqlite dialect to gorm via import

	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/nixvuln/db/model"
	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

// indexInsertBatch keeps multi-row inserts below sqlite's limit of 999 bound parameters.
const indexInsertBatch = 400

var _ vulnerability.Provider = (*Store)(nil)

// Store is the on-disk copy of the feed: advisories by CVE ID, an index from product name to advisories, and
// the sync bookkeeping. Only one process may have a store of a given directory open at a time.
type Store struct {
	db                  *gorm.DB
	dir                 string
	lock                *fileLock
	compactionThreshold int
	inTx                bool
}

// Open locks the cache directory, then opens (and creates or migrates, when needed) the store in it.
func Open(cfg Config) (*Store, error) {
	dir, err := cfg.dir()
	if err != nil {
		return nil, fmt.Errorf("unable to resolve db directory: %w", err)
	}
	if dir == "" {
		return nil, fmt.Errorf("no db directory given")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create db directory: %w", err)
	}

	lock, err := acquireLock(filepath.Join(dir, LockFileName))
	if err != nil {
		return nil, err
	}

	db, err := open(dbPath(dir))
	if err != nil {
		_ = lock.release()
		return nil, err
	}

	log.Debugf("opened vulnerability store at %q", dir)
	return &Store{
		db:                  db,
		dir:                 dir,
		lock:                lock,
		compactionThreshold: cfg.compactionThreshold(),
	}, nil
}

// connectionString selects a rollback journal with full syncs, so an interrupted write never leaves a half
// applied transaction behind.
func connectionString(path string) string {
	return fmt.Sprintf("file:%s?_journal_mode=DELETE&_synchronous=FULL&_busy_timeout=5000", path)
}

func open(path string) (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", connectionString(path))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to DB: %w", err)
	}
	db.SetLogger(&logAdapter{})

	for _, m := range []interface{}{
		&model.VulnerabilityModel{},
		&model.ProductIndexModel{},
		&model.MetadataModel{},
		&model.ValidatorModel{},
	} {
		if err := db.AutoMigrate(m).Error; err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("unable to migrate %T: %w", m, err)
		}
	}
	return db, nil
}

// Dir is the cache directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// Close releases the database and the directory lock.
func (s *Store) Close() error {
	if s.inTx {
		return errInTransaction
	}
	err := s.db.Close()
	if lerr := s.lock.release(); err == nil {
		err = lerr
	}
	return err
}

// Update runs fn inside a single transaction. The transaction commits when fn returns nil and is rolled back
// when it returns an error or panics.
func (s *Store) Update(fn func(tx *Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	handle := s.db.Begin()
	if handle.Error != nil {
		return fmt.Errorf("unable to begin transaction: %w", handle.Error)
	}

	tx := *s
	tx.db = handle
	tx.inTx = true

	defer func() {
		if p := recover(); p != nil {
			handle.Rollback()
			panic(p)
		}
	}()

	if err := fn(&tx); err != nil {
		if rerr := handle.Rollback().Error; rerr != nil {
			log.Warnf("unable to roll back transaction: %+v", rerr)
		}
		return err
	}

	if err := handle.Commit().Error; err != nil {
		return fmt.Errorf("unable to commit transaction: %w", err)
	}
	return nil
}

// Put stores an advisory, replacing any previous record with the same ID. A record whose content is
// unchanged is left untouched. The product index is not updated until the next RebuildIndex, which every
// Curator.Update that checks the mirror performs.
func (s *Store) Put(v vulnerability.Vulnerability) error {
	m, err := model.NewVulnerabilityModel(v)
	if err != nil {
		return err
	}

	var existing model.VulnerabilityModel
	result := s.db.Select("cve_id, digest").Where("cve_id = ?", v.ID).First(&existing)
	switch {
	case result.Error == nil:
		if existing.Digest == m.Digest {
			return nil
		}
		result = s.db.Save(&m)
	case gorm.IsRecordNotFoundError(result.Error):
		result = s.db.Create(&m)
	}
	if result.Error != nil {
		return fmt.Errorf("unable to store %s: %w", v.ID, result.Error)
	}
	return nil
}

// GetByID returns the advisory with the given ID or ErrNotFound.
func (s *Store) GetByID(id string) (*vulnerability.Vulnerability, error) {
	var m model.VulnerabilityModel
	result := s.db.Where("cve_id = ?", id).First(&m)
	if gorm.IsRecordNotFoundError(result.Error) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if result.Error != nil {
		return nil, result.Error
	}

	v, err := m.Inflate()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByProduct returns every indexed advisory naming the product, ordered by ID. Unknown products yield an
// empty result.
func (s *Store) GetByProduct(product string) ([]vulnerability.Vulnerability, error) {
	var models []model.VulnerabilityModel
	result := s.db.
		Select(model.VulnerabilityTableName+".*").
		Joins(fmt.Sprintf("JOIN %[1]s ON %[1]s.cve_id = %[2]s.cve_id", model.ProductIndexTableName, model.VulnerabilityTableName)).
		Where(model.ProductIndexTableName+".product = ?", product).
		Order(model.VulnerabilityTableName + ".cve_id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("unable to look up %q: %w", product, result.Error)
	}

	vulns := make([]vulnerability.Vulnerability, len(models))
	for idx, m := range models {
		v, err := m.Inflate()
		if err != nil {
			return nil, err
		}
		vulns[idx] = v
	}
	return vulns, nil
}

// Count is the number of stored advisories.
func (s *Store) Count() (int, error) {
	var count int
	if err := s.db.Model(&model.VulnerabilityModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// RebuildIndex recomputes the product index from all stored advisories.
func (s *Store) RebuildIndex() error {
	if err := s.db.Exec("DELETE FROM " + model.ProductIndexTableName).Error; err != nil {
		return fmt.Errorf("unable to clear product index: %w", err)
	}

	entries, err := s.indexEntries()
	if err != nil {
		return err
	}

	for start := 0; start < len(entries); start += indexInsertBatch {
		end := start + indexInsertBatch
		if end > len(entries) {
			end = len(entries)
		}
		if err := s.insertIndexEntries(entries[start:end]); err != nil {
			return err
		}
	}
	log.Debugf("rebuilt product index with %d entries", len(entries))
	return nil
}

func (s *Store) indexEntries() ([]model.ProductIndexModel, error) {
	rows, err := s.db.Model(&model.VulnerabilityModel{}).Select("cve_id, products").Rows()
	if err != nil {
		return nil, fmt.Errorf("unable to read vulnerabilities: %w", err)
	}
	defer log.CloseAndLogError(rows, "vulnerability rows")

	var entries []model.ProductIndexModel
	for rows.Next() {
		var m model.VulnerabilityModel
		if err := s.db.ScanRows(rows, &m); err != nil {
			return nil, fmt.Errorf("unable to scan vulnerability: %w", err)
		}
		products, err := m.ProductNames()
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			entries = append(entries, model.ProductIndexModel{Product: p, CVEID: m.ID})
		}
	}
	return entries, rows.Err()
}

func (s *Store) insertIndexEntries(entries []model.ProductIndexModel) error {
	if len(entries) == 0 {
		return nil
	}
	placeholders := make([]string, len(entries))
	args := make([]interface{}, 0, 2*len(entries))
	for i, e := range entries {
		placeholders[i] = "(?, ?)"
		args = append(args, e.Product, e.CVEID)
	}

	stmt := fmt.Sprintf("INSERT OR IGNORE INTO %s (product, cve_id) VALUES %s", model.ProductIndexTableName, strings.Join(placeholders, ", "))
	if err := s.db.Exec(stmt, args...).Error; err != nil {
		return fmt.Errorf("unable to write product index: %w", err)
	}
	return nil
}
