package vulnerability

import (
	"fmt"
	"sort"

	"github.com/scylladb/go-set/strset"

	"github.com/nixvuln/nixvuln/nixvuln/version"
)

// Vulnerability is one advisory (CVE) together with the products and versions it affects.
type Vulnerability struct {
	ID           string   `json:"id"`
	Nodes        []Node   `json:"nodes"`
	Description  string   `json:"description,omitempty"`
	Published    string   `json:"published,omitempty"`
	LastModified string   `json:"lastModified,omitempty"`
	Severity     string   `json:"severity,omitempty"`
	Score        float64  `json:"score,omitempty"`
	URLs         []string `json:"urls,omitempty"`
}

// Node is a single affected product with the version range it is affected in.
type Node struct {
	Vendor  string        `json:"vendor"`
	Product string        `json:"product"`
	Range   version.Range `json:"range"`
}

func (n Node) Matches(product, ver string) bool {
	return n.Product == product && n.Range.Contains(ver)
}

func (n Node) String() string {
	return fmt.Sprintf("%s:%s %s", n.Vendor, n.Product, n.Range)
}

// Matches reports whether any node of the vulnerability affects the given product at the given version.
func (v Vulnerability) Matches(product, ver string) bool {
	for _, n := range v.Nodes {
		if n.Matches(product, ver) {
			return true
		}
	}
	return false
}

// Products returns the distinct product names named by the nodes, sorted.
func (v Vulnerability) Products() []string {
	products := strset.New()
	for _, n := range v.Nodes {
		products.Add(n.Product)
	}
	list := products.List()
	sort.Strings(list)
	return list
}

func (v Vulnerability) String() string {
	return fmt.Sprintf("Vuln(id=%s nodes=%d)", v.ID, len(v.Nodes))
}

// SortByID orders vulnerabilities by their identifier.
func SortByID(vulns []Vulnerability) {
	sort.SliceStable(vulns, func(i, j int) bool {
		return vulns[i].ID < vulns[j].ID
	})
}
