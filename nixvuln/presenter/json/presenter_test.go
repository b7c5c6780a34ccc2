package json

import (
	"bytes"
	"encoding/json"
	"flag"
	"testing"

	"github.com/anchore/go-testutils"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixvuln/nixvuln/nixvuln/presenter/models"
)

var update = flag.Bool("update", false, "update the *.golden files for json presenters")

func TestJSONPresenter(t *testing.T) {
	doc := models.Document{
		Matches: []models.Match{
			{
				Name:       "curl-8.3.0",
				Pname:      "curl",
				Version:    "8.3.0",
				PackageURL: "pkg:nix/curl@8.3.0",
				Vulnerabilities: []models.Vulnerability{
					{ID: "CVE-2023-38545", Severity: "CRITICAL", Score: 9.8, Description: "SOCKS5 heap overflow with <host> names"},
				},
			},
		},
	}

	var buffer bytes.Buffer
	require.NoError(t, NewPresenter(doc).Present(&buffer))

	// html characters are left alone
	assert.Contains(t, buffer.String(), "<host>")

	var actual models.Document
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &actual))
	assert.Equal(t, doc, actual)
}

func TestJSONPresenter_Empty(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, NewPresenter(models.NewDocument(nil, nil)).Present(&buffer))
	assert.JSONEq(t, `{"matches": []}`, buffer.String())
}

func TestJSONPresenter_Snapshot(t *testing.T) {
	doc := models.Document{
		Matches: []models.Match{
			{
				Name:       "openssl-1.1.1w",
				Pname:      "openssl",
				Version:    "1.1.1w",
				Derivation: "/nix/store/2kz4q3hy0lz0n3s0x9sn3z1dpdp3l4fv-openssl-1.1.1w.drv",
				PackageURL: "pkg:nix/openssl@1.1.1w",
				Vulnerabilities: []models.Vulnerability{
					{
						ID:          "CVE-2023-5678",
						Severity:    "MEDIUM",
						Score:       5.3,
						Description: "Generating excessively long X9.42 DH keys may be slow",
						URLs:        []string{"https://www.openssl.org/news/secadv/20231106.txt"},
					},
				},
			},
		},
		Skipped: []models.Skip{{Source: "hello-src.tar.gz.drv", Reason: "source archive"}},
	}

	var buffer bytes.Buffer
	require.NoError(t, NewPresenter(doc).Present(&buffer))

	actual := buffer.Bytes()
	if *update {
		testutils.UpdateGoldenFileContents(t, actual)
	}

	var expected = testutils.GetGoldenFileContents(t)

	if !bytes.Equal(expected, actual) {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(string(expected), string(actual), true)
		t.Errorf("mismatched output:\n%s", dmp.DiffPrettyText(diffs))
	}
}
