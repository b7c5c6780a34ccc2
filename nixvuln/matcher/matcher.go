package matcher

import (
	"fmt"

	"github.com/nixvuln/nixvuln/nixvuln/derivation"
	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

// Check returns the advisories affecting the derivation, sorted by ID. Product candidates are tried in order
// and the first one with at least one match wins. Advisories whose CVE ID appears in the applied patches are
// left out.
func Check(provider vulnerability.Provider, d derivation.Derivation) ([]vulnerability.Vulnerability, error) {
	patched := d.AppliedPatches()

	for _, product := range d.ProductCandidates() {
		candidates, err := provider.GetByProduct(product)
		if err != nil {
			return nil, fmt.Errorf("unable to fetch vulnerabilities for %q: %w", product, err)
		}

		var matches []vulnerability.Vulnerability
		seen := make(map[string]struct{})
		for _, v := range candidates {
			if _, ok := seen[v.ID]; ok {
				continue
			}
			if patched.Has(v.ID) || !v.Matches(product, d.Version) {
				continue
			}
			seen[v.ID] = struct{}{}
			matches = append(matches, v)
		}

		if len(matches) > 0 {
			vulnerability.SortByID(matches)
			return matches, nil
		}
	}
	return nil, nil
}
