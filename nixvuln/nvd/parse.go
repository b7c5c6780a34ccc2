package nvd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/facebookincubator/nvdtools/cvefeed/nvd/schema"
	"github.com/facebookincubator/nvdtools/wfn"

	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/nixvuln/version"
	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

var errNoID = errors.New("advisory has no CVE ID")

// feed mirrors schema.NVDCVEFeedJSON10 but defers decoding of the items, so one malformed item does not spoil
// the whole segment.
type feed struct {
	CVEItems []json.RawMessage `json:"CVE_Items"`
}

// Parse decodes a whole (decompressed) feed segment. Items that fail to decode or translate are logged and
// skipped.
func Parse(r io.Reader) ([]vulnerability.Vulnerability, error) {
	var f feed
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("unable to decode NVD feed: %w", err)
	}

	vulns := make([]vulnerability.Vulnerability, 0, len(f.CVEItems))
	for idx, raw := range f.CVEItems {
		var item schema.NVDCVEFeedJSON10DefCVEItem
		if err := json.Unmarshal(raw, &item); err != nil {
			log.Warnf("skipping malformed NVD item #%d: %v", idx, err)
			continue
		}
		vuln, err := translate(&item)
		if err != nil {
			log.Debugf("skipping NVD item #%d: %v", idx, err)
			continue
		}
		vulns = append(vulns, vuln)
	}
	return vulns, nil
}

func translate(item *schema.NVDCVEFeedJSON10DefCVEItem) (vulnerability.Vulnerability, error) {
	if item.CVE == nil || item.CVE.CVEDataMeta == nil || item.CVE.CVEDataMeta.ID == "" {
		return vulnerability.Vulnerability{}, errNoID
	}
	id := item.CVE.CVEDataMeta.ID

	vuln := vulnerability.Vulnerability{
		ID:           id,
		Description:  description(item.CVE),
		Published:    item.PublishedDate,
		LastModified: item.LastModifiedDate,
		URLs:         references(item.CVE),
	}
	vuln.Severity, vuln.Score = severity(item.Impact)

	if item.Configurations != nil {
		nodes, err := walkNodes(id, item.Configurations.Nodes)
		if err != nil {
			return vulnerability.Vulnerability{}, fmt.Errorf("%s: %w", id, err)
		}
		vuln.Nodes = nodes
	}
	return vuln, nil
}

// walkNodes flattens the configuration tree into the vulnerable application nodes it names.
func walkNodes(id string, nodes []*schema.NVDCVEFeedJSON10DefNode) ([]vulnerability.Node, error) {
	var result []vulnerability.Node
	for _, node := range nodes {
		if node == nil {
			continue
		}
		for _, match := range node.CPEMatch {
			if match == nil || !match.Vulnerable {
				continue
			}
			n, ok, err := newNode(match)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			result = append(result, n)
		}

		children, err := walkNodes(id, node.Children)
		if err != nil {
			return nil, err
		}
		result = append(result, children...)
	}
	return result, nil
}

// newNode translates a single cpe_match entry. Matches that cannot affect a versioned application are dropped
// (ok is false).
func newNode(match *schema.NVDCVEFeedJSON10DefCPEMatch) (vulnerability.Node, bool, error) {
	attrs, err := wfn.UnbindFmtString(match.Cpe23Uri)
	if err != nil {
		return vulnerability.Node{}, false, fmt.Errorf("unable to parse CPE %q: %w", match.Cpe23Uri, err)
	}
	if attrs.Part != "a" {
		return vulnerability.Node{}, false, nil
	}

	n := vulnerability.Node{
		Vendor:  wfn.StripSlashes(attrs.Vendor),
		Product: wfn.StripSlashes(attrs.Product),
		Range: version.Range{
			StartIncluding: match.VersionStartIncluding,
			StartExcluding: match.VersionStartExcluding,
			EndIncluding:   match.VersionEndIncluding,
			EndExcluding:   match.VersionEndExcluding,
		},
	}

	if n.Range.IsAny() {
		switch attrs.Version {
		case wfn.Any:
			// every version is affected
		case wfn.NA:
			return vulnerability.Node{}, false, nil
		default:
			n.Range.Exact = exactVersion(attrs)
		}
	}
	return n, true, nil
}

func exactVersion(attrs *wfn.Attributes) string {
	v := wfn.StripSlashes(attrs.Version)
	if attrs.Update != wfn.Any && attrs.Update != wfn.NA {
		v += "-" + wfn.StripSlashes(attrs.Update)
	}
	return v
}

func description(cve *schema.CVEJSON40) string {
	if cve.Description == nil {
		return ""
	}
	var fallback string
	for _, d := range cve.Description.DescriptionData {
		if d == nil {
			continue
		}
		if strings.EqualFold(d.Lang, "en") {
			return d.Value
		}
		if fallback == "" {
			fallback = d.Value
		}
	}
	return fallback
}

func references(cve *schema.CVEJSON40) []string {
	if cve.References == nil {
		return nil
	}
	var urls []string
	for _, ref := range cve.References.ReferenceData {
		if ref != nil && ref.URL != "" {
			urls = append(urls, ref.URL)
		}
	}
	return urls
}

// severity prefers CVSS v3 over v2.
func severity(impact *schema.NVDCVEFeedJSON10DefImpact) (string, float64) {
	if impact == nil {
		return "", 0
	}
	if m := impact.BaseMetricV3; m != nil && m.CVSSV3 != nil {
		return strings.ToUpper(m.CVSSV3.BaseSeverity), m.CVSSV3.BaseScore
	}
	if m := impact.BaseMetricV2; m != nil && m.CVSSV2 != nil {
		return strings.ToUpper(m.Severity), m.CVSSV2.BaseScore
	}
	return "", 0
}
