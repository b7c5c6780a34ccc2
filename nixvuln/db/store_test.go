package db

import (
	"errors"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixvuln/nixvuln/nixvuln/version"
	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

func newTestStore(t *testing.T) (*Store, Config) {
	t.Helper()
	cfg := Config{DBRootDir: t.TempDir()}
	s, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s, cfg
}

func putAll(t *testing.T, s *Store, vulns ...vulnerability.Vulnerability) {
	t.Helper()
	require.NoError(t, s.Update(func(tx *Store) error {
		for _, v := range vulns {
			if err := tx.Put(v); err != nil {
				return err
			}
		}
		return tx.RebuildIndex()
	}))
}

func curlVuln() vulnerability.Vulnerability {
	return vulnerability.Vulnerability{
		ID: "CVE-2023-38545",
		Nodes: []vulnerability.Node{
			{Vendor: "haxx", Product: "curl", Range: version.Range{StartIncluding: "7.69.0", EndExcluding: "8.4.0"}},
			{Vendor: "haxx", Product: "libcurl", Range: version.Range{StartIncluding: "7.69.0", EndExcluding: "8.4.0"}},
		},
		Description: "SOCKS5 heap buffer overflow",
		Severity:    "CRITICAL",
		Score:       9.8,
	}
}

func TestStore_Empty(t *testing.T) {
	s, _ := newTestStore(t)

	vulns, err := s.GetByProduct("openssl")
	require.NoError(t, err)
	assert.Empty(t, vulns)

	_, err = s.GetByID("CVE-2021-1234")
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	meta, err := s.Metadata()
	require.NoError(t, err)
	assert.True(t, meta.LastUpdate.IsZero())
}

func TestStore_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	v := curlVuln()
	putAll(t, s, v)

	actual, err := s.GetByID(v.ID)
	require.NoError(t, err)
	for _, d := range deep.Equal(v, *actual) {
		t.Errorf("diff: %+v", d)
	}

	for _, product := range v.Products() {
		vulns, err := s.GetByProduct(product)
		require.NoError(t, err)
		require.Len(t, vulns, 1, product)
		assert.Equal(t, v.ID, vulns[0].ID)
	}
}

func TestStore_ReingestReplaces(t *testing.T) {
	s, _ := newTestStore(t)
	original := curlVuln()
	putAll(t, s, original)

	changed := curlVuln()
	changed.Nodes = []vulnerability.Node{
		{Vendor: "haxx", Product: "curl", Range: version.Range{StartIncluding: "7.69.0", EndExcluding: "8.4.1"}},
	}
	putAll(t, s, changed)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	actual, err := s.GetByID(original.ID)
	require.NoError(t, err)
	assert.Equal(t, "8.4.1", actual.Nodes[0].Range.EndExcluding)

	stale, err := s.GetByProduct("libcurl")
	require.NoError(t, err)
	assert.Empty(t, stale)

	current, err := s.GetByProduct("curl")
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Len(t, current[0].Nodes, 1)
}

func TestStore_GetByProductOrdered(t *testing.T) {
	s, _ := newTestStore(t)
	mk := func(id string) vulnerability.Vulnerability {
		return vulnerability.Vulnerability{ID: id, Nodes: []vulnerability.Node{{Vendor: "gnu", Product: "bash"}}}
	}
	putAll(t, s, mk("CVE-2019-9924"), mk("CVE-2014-6271"), mk("CVE-2016-0634"))

	vulns, err := s.GetByProduct("bash")
	require.NoError(t, err)
	var ids []string
	for _, v := range vulns {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"CVE-2014-6271", "CVE-2016-0634", "CVE-2019-9924"}, ids)
}

func TestStore_RebuildIndexBatches(t *testing.T) {
	s, _ := newTestStore(t)

	var vulns []vulnerability.Vulnerability
	for i := 0; i < indexInsertBatch+50; i++ {
		vulns = append(vulns, vulnerability.Vulnerability{
			ID:    "CVE-2020-" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26)),
			Nodes: []vulnerability.Node{{Product: "zlib"}, {Product: "minizip"}},
		})
	}
	putAll(t, s, vulns...)

	count, err := s.Count()
	require.NoError(t, err)

	got, err := s.GetByProduct("minizip")
	require.NoError(t, err)
	assert.Len(t, got, count)
}

func TestStore_UpdateRollsBack(t *testing.T) {
	s, _ := newTestStore(t)
	boom := errors.New("boom")

	err := s.Update(func(tx *Store) error {
		require.NoError(t, tx.Put(curlVuln()))
		require.NoError(t, tx.SetValidator("http://mirror/x.json.gz", `"etag"`))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetByID(curlVuln().ID)
	assert.ErrorIs(t, err, ErrNotFound)
	etag, err := s.Validator("http://mirror/x.json.gz")
	require.NoError(t, err)
	assert.Empty(t, etag)

	assert.Panics(t, func() {
		_ = s.Update(func(tx *Store) error {
			_ = tx.Put(curlVuln())
			panic("in the middle of a write")
		})
	})
	_, err = s.GetByID(curlVuln().ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_InUse(t *testing.T) {
	s, cfg := newTestStore(t)

	_, err := Open(cfg)
	assert.ErrorIs(t, err, ErrStoreInUse)

	require.NoError(t, s.Close())

	again, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestStore_Validators(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.SetValidator("u1", `"a"`))
	require.NoError(t, s.SetValidator("u1", `"b"`))
	require.NoError(t, s.SetValidator("u2", `"c"`))

	etag, err := s.Validator("u1")
	require.NoError(t, err)
	assert.Equal(t, `"b"`, etag)

	all, err := s.Validators()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": `"b"`, "u2": `"c"`}, all)
}

func TestStore_MaybeCompact(t *testing.T) {
	cfg := Config{DBRootDir: t.TempDir(), CompactionThreshold: 2}
	s, err := Open(cfg)
	require.NoError(t, err)
	defer s.Close()

	putAll(t, s, curlVuln())

	var compactions []bool
	for i := 0; i < 6; i++ {
		compacted, err := s.MaybeCompact()
		require.NoError(t, err)
		compactions = append(compactions, compacted)
	}
	assert.Equal(t, []bool{false, false, true, false, false, true}, compactions)

	// compaction never changes query results
	vulns, err := s.GetByProduct("curl")
	require.NoError(t, err)
	assert.Len(t, vulns, 1)

	err = s.Update(func(tx *Store) error {
		_, err := tx.MaybeCompact()
		return err
	})
	assert.ErrorIs(t, err, errInTransaction)
}

func TestStore_MaybeCompactDefaultThreshold(t *testing.T) {
	s, err := Open(Config{DBRootDir: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()

	for session := 1; session <= 2*(DefaultCompactionThreshold+1); session++ {
		compacted, err := s.MaybeCompact()
		require.NoError(t, err)
		assert.Equal(t, session%(DefaultCompactionThreshold+1) == 0, compacted, "session %d", session)
	}
}
