package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nixvuln/nixvuln/nixvuln/derivation"
	"github.com/nixvuln/nixvuln/nixvuln/matcher"
	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

func TestNewDocument(t *testing.T) {
	results := []matcher.Result{
		{
			Derivation: derivation.Derivation{Name: "zlib-1.3", Pname: "zlib", Version: "1.3"},
		},
		{
			Derivation: derivation.Derivation{
				Name:      "openssl-1.1.1k",
				Pname:     "openssl",
				Version:   "1.1.1k",
				StorePath: "/nix/store/abc-openssl-1.1.1k.drv",
			},
			Vulnerabilities: []vulnerability.Vulnerability{
				{ID: "CVE-2021-3711", Severity: "CRITICAL", Score: 9.8, URLs: []string{"https://www.openssl.org/news/secadv/20210824.txt"}},
			},
		},
	}
	skipped := []Skip{{Source: "src.tar.gz.drv", Reason: "source artifact"}}

	expected := Document{
		Matches: []Match{
			{
				Name:       "openssl-1.1.1k",
				Pname:      "openssl",
				Version:    "1.1.1k",
				Derivation: "/nix/store/abc-openssl-1.1.1k.drv",
				PackageURL: "pkg:nix/openssl@1.1.1k",
				Vulnerabilities: []Vulnerability{
					{ID: "CVE-2021-3711", Severity: "CRITICAL", Score: 9.8, URLs: []string{"https://www.openssl.org/news/secadv/20210824.txt"}},
				},
			},
		},
		Skipped: skipped,
	}

	if d := cmp.Diff(expected, NewDocument(results, skipped)); d != "" {
		t.Errorf("unexpected document (-want +got):\n%s", d)
	}
}

func TestNewDocument_NothingAffected(t *testing.T) {
	doc := NewDocument(nil, nil)
	if doc.Matches == nil || len(doc.Matches) != 0 {
		t.Errorf("expected an empty, non-nil match list, got %#v", doc.Matches)
	}
}
