package models

import (
	"github.com/nixvuln/nixvuln/nixvuln/matcher"
	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

// Document is the report handed to every presenter.
type Document struct {
	Matches []Match `json:"matches"`
	Skipped []Skip  `json:"skipped,omitempty"`
}

// Match is one affected derivation together with the advisories affecting it.
type Match struct {
	Name            string          `json:"name"`
	Pname           string          `json:"pname"`
	Version         string          `json:"version"`
	Derivation      string          `json:"derivation,omitempty"`
	PackageURL      string          `json:"purl"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

type Vulnerability struct {
	ID          string   `json:"id"`
	Severity    string   `json:"severity,omitempty"`
	Score       float64  `json:"score,omitempty"`
	Description string   `json:"description,omitempty"`
	URLs        []string `json:"urls,omitempty"`
}

// Skip records an input that was not scanned and why.
type Skip struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// NewDocument keeps only the affected derivations of the given results, preserving their order.
func NewDocument(results []matcher.Result, skipped []Skip) Document {
	doc := Document{
		Matches: make([]Match, 0),
		Skipped: skipped,
	}
	for _, r := range results {
		if !r.Affected() {
			continue
		}
		d := r.Derivation
		m := Match{
			Name:       d.Name,
			Pname:      d.Pname,
			Version:    d.Version,
			Derivation: d.StorePath,
			PackageURL: d.PackageURL(),
		}
		for _, v := range r.Vulnerabilities {
			m.Vulnerabilities = append(m.Vulnerabilities, newVulnerability(v))
		}
		doc.Matches = append(doc.Matches, m)
	}
	return doc
}

func newVulnerability(v vulnerability.Vulnerability) Vulnerability {
	return Vulnerability{
		ID:          v.ID,
		Severity:    v.Severity,
		Score:       v.Score,
		Description: v.Description,
		URLs:        v.URLs,
	}
}
