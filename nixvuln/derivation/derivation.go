package derivation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/anchore/packageurl-go"
	"github.com/scylladb/go-set/strset"

	"github.com/nixvuln/nixvuln/nixvuln/version"
)

// versionPattern mirrors builtins.parseDrvName: the version starts at the first dash followed by a digit.
var versionPattern = regexp.MustCompile(`^(\S+?)-([0-9]\S*)$`)

var cvePattern = regexp.MustCompile(`(?i)CVE-\d{4}-\d+`)

var sourceArtifactSuffixes = []string{".tar.gz", ".tar.bz2", ".tar.xz", ".zip", ".patch", ".diff"}

// Derivation is the resolved identity of one build unit.
type Derivation struct {
	// Name is the name as declared; Pname and Version are lowercased.
	Name      string
	Pname     string
	Version   string
	Patches   string
	StorePath string
}

// New resolves a descriptor into a Derivation. Descriptors naming source artifacts or lacking a version are
// rejected with an error wrapping ErrSkip.
func New(d Descriptor) (*Derivation, error) {
	name, err := d.name()
	if err != nil {
		return nil, err
	}

	fullname := strings.TrimSuffix(strings.ToLower(name), ".drv")
	for _, suffix := range sourceArtifactSuffixes {
		if strings.HasSuffix(fullname, suffix) {
			return nil, skipError{name: name, reason: "source artifact"}
		}
	}

	pname, ver, ok := SplitName(fullname)
	if !ok {
		return nil, skipError{name: name, reason: "no version"}
	}

	return &Derivation{
		Name:      name,
		Pname:     pname,
		Version:   ver,
		Patches:   d.patches(),
		StorePath: d.StorePath,
	}, nil
}

// SplitName splits a derivation name into the lowercased package name and version the way Nix does.
func SplitName(fullname string) (pname, ver string, ok bool) {
	fullname = strings.TrimSuffix(strings.ToLower(fullname), ".drv")
	m := versionPattern.FindStringSubmatch(fullname)
	if m == nil {
		return fullname, "", false
	}
	return m[1], m[2], true
}

// ProductCandidates lists the product names this derivation may be filed under, in the order they should be
// tried.
func (d Derivation) ProductCandidates() []string {
	candidates := []string{d.Pname}
	if alt := strings.ReplaceAll(d.Pname, "-", "_"); alt != d.Pname {
		candidates = append(candidates, alt)
	}
	return candidates
}

// AppliedPatches guesses the CVEs remediated by the applied patches from CVE identifiers in their names.
func (d Derivation) AppliedPatches() *strset.Set {
	patched := strset.New()
	for _, id := range cvePattern.FindAllString(d.Patches, -1) {
		patched.Add(strings.ToUpper(id))
	}
	return patched
}

// PackageURL renders the derivation as a pkg:nix package URL.
func (d Derivation) PackageURL() string {
	purl := packageurl.PackageURL{
		Type:    "nix",
		Name:    d.Pname,
		Version: d.Version,
	}
	return purl.ToString()
}

func (d Derivation) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Version)
}

// Less orders derivations by package name, then by version.
func Less(a, b Derivation) bool {
	if a.Pname != b.Pname {
		return a.Pname < b.Pname
	}
	return version.Compare(a.Version, b.Version) < 0
}

func Sort(derivations []Derivation) {
	sort.SliceStable(derivations, func(i, j int) bool {
		return Less(derivations[i], derivations[j])
	})
}
