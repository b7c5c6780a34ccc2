package matcher_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixvuln/nixvuln/nixvuln/db"
	"github.com/nixvuln/nixvuln/nixvuln/derivation"
	"github.com/nixvuln/nixvuln/nixvuln/matcher"
	"github.com/nixvuln/nixvuln/nixvuln/version"
	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

func TestFindMatches_Store(t *testing.T) {
	store, err := db.Open(db.Config{DBRootDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Update(func(tx *db.Store) error {
		for _, v := range []vulnerability.Vulnerability{
			{
				ID: "CVE-2023-4863",
				Nodes: []vulnerability.Node{
					{Vendor: "webmproject", Product: "libwebp", Range: version.Range{StartIncluding: "0.5.0", EndExcluding: "1.3.2"}},
				},
			},
			{
				ID: "CVE-2022-1234",
				Nodes: []vulnerability.Node{
					{Vendor: "example", Product: "foo_bar", Range: version.Range{Exact: "2.0"}},
				},
			},
		} {
			if err := tx.Put(v); err != nil {
				return err
			}
		}
		return tx.RebuildIndex()
	}))

	var derivations []derivation.Derivation
	for _, name := range []string{"libwebp-1.3.1", "libwebp-1.3.2", "foo-bar-2.0", "foo-bar-2.0.1"} {
		d, err := derivation.New(derivation.Descriptor{Name: name})
		require.NoError(t, err)
		derivations = append(derivations, *d)
	}

	results, err := matcher.FindMatches(context.Background(), store, derivations, 2)
	require.NoError(t, err)
	require.Len(t, results, 4)

	var affected []string
	for _, r := range results {
		for _, v := range r.Vulnerabilities {
			affected = append(affected, r.Derivation.Name+" "+v.ID)
		}
	}
	assert.Equal(t, []string{
		"libwebp-1.3.1 CVE-2023-4863",
		"foo-bar-2.0 CVE-2022-1234",
	}, affected)
}
