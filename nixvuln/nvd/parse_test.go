package nvd

import (
	"os"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixvuln/nixvuln/nixvuln/version"
	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

func TestParse(t *testing.T) {
	f, err := os.Open("test-fixtures/feed.json")
	require.NoError(t, err)
	defer f.Close()

	vulns, err := Parse(f)
	require.NoError(t, err)

	expected := []vulnerability.Vulnerability{
		{
			ID: "CVE-2022-0778",
			Nodes: []vulnerability.Node{
				{Vendor: "openssl", Product: "openssl", Range: version.Range{StartIncluding: "1.0.2", EndExcluding: "1.0.2zd"}},
				{Vendor: "openssl", Product: "openssl", Range: version.Range{StartIncluding: "1.1.0", EndExcluding: "1.1.1n"}},
			},
			Description:  "The BN_mod_sqrt() function can loop forever.",
			Published:    "2022-03-15T17:15Z",
			LastModified: "2022-11-09T13:41Z",
			Severity:     "HIGH",
			Score:        7.5,
			URLs:         []string{"https://www.openssl.org/news/secadv/20220315.txt"},
		},
		{
			ID: "CVE-2021-3711",
			Nodes: []vulnerability.Node{
				{Vendor: "openssl", Product: "openssl", Range: version.Range{Exact: "1.1.1k"}},
				{Vendor: "node.js", Product: "node.js", Range: version.Range{Exact: "14.0.0-rc1"}},
				{Vendor: "vendor", Product: "anything"},
			},
			Description:  "SM2 decryption buffer overflow.",
			Published:    "2021-08-24T15:15Z",
			LastModified: "2022-08-29T20:07Z",
			Severity:     "HIGH",
			Score:        7.5,
		},
	}

	for _, d := range deep.Equal(expected, vulns) {
		t.Errorf("diff: %+v", d)
	}
}

func TestParse_NotAFeed(t *testing.T) {
	_, err := Parse(strings.NewReader(`[1, 2, 3`))
	assert.Error(t, err)
}

func TestParse_EmptyFeed(t *testing.T) {
	vulns, err := Parse(strings.NewReader(`{"CVE_Items": []}`))
	require.NoError(t, err)
	assert.Empty(t, vulns)
}
