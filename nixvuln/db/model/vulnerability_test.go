package model

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixvuln/nixvuln/nixvuln/version"
	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

func TestVulnerabilityModel_Inflate(t *testing.T) {
	v := vulnerability.Vulnerability{
		ID: "CVE-2023-38545",
		Nodes: []vulnerability.Node{
			{Vendor: "haxx", Product: "curl", Range: version.Range{StartIncluding: "7.69.0", EndExcluding: "8.4.0"}},
			{Vendor: "haxx", Product: "libcurl", Range: version.Range{StartIncluding: "7.69.0", EndExcluding: "8.4.0"}},
			{Vendor: "haxx", Product: "curl", Range: version.Range{Exact: "8.4.0-rc1"}},
		},
		Description: "SOCKS5 heap buffer overflow",
		Severity:    "CRITICAL",
		Score:       9.8,
		URLs:        []string{"https://curl.se/docs/CVE-2023-38545.html"},
	}

	m, err := NewVulnerabilityModel(v)
	require.NoError(t, err)
	assert.Equal(t, `["curl","libcurl"]`, m.Products)
	assert.NotEmpty(t, m.Digest)

	products, err := m.ProductNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"curl", "libcurl"}, products)

	actual, err := m.Inflate()
	require.NoError(t, err)
	for _, d := range deep.Equal(v, actual) {
		t.Errorf("diff: %+v", d)
	}
}

func TestDigest(t *testing.T) {
	a := vulnerability.Vulnerability{ID: "CVE-1", Nodes: []vulnerability.Node{{Product: "foo"}}}
	b := vulnerability.Vulnerability{ID: "CVE-1", Nodes: []vulnerability.Node{{Product: "foo", Range: version.Range{EndExcluding: "2"}}}}

	da, err := Digest(a)
	require.NoError(t, err)
	da2, err := Digest(a)
	require.NoError(t, err)
	db, err := Digest(b)
	require.NoError(t, err)

	assert.Equal(t, da, da2)
	assert.NotEqual(t, da, db)
}
