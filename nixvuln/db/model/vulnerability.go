package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/nixvuln/nixvuln/nixvuln/vulnerability"
)

const (
	VulnerabilityTableName = "vulnerability"
)

// VulnerabilityModel is the row holding one advisory. Nodes and URLs are stored as JSON, Products lists the
// distinct product names of the nodes (JSON array) so the product index can be rebuilt without inflating
// every record.
type VulnerabilityModel struct {
	ID           string  `gorm:"column:cve_id;primary_key"`
	Products     string  `gorm:"column:products"`
	Nodes        string  `gorm:"column:nodes"`
	Description  string  `gorm:"column:description"`
	Published    string  `gorm:"column:published"`
	LastModified string  `gorm:"column:last_modified"`
	Severity     string  `gorm:"column:severity"`
	Score        float64 `gorm:"column:score"`
	URLs         string  `gorm:"column:urls"`
	Digest       string  `gorm:"column:digest"`
}

func NewVulnerabilityModel(v vulnerability.Vulnerability) (VulnerabilityModel, error) {
	nodes, err := json.Marshal(v.Nodes)
	if err != nil {
		return VulnerabilityModel{}, fmt.Errorf("unable to marshal nodes of %s: %w", v.ID, err)
	}
	products, err := json.Marshal(v.Products())
	if err != nil {
		return VulnerabilityModel{}, fmt.Errorf("unable to marshal products of %s: %w", v.ID, err)
	}
	urls, err := json.Marshal(v.URLs)
	if err != nil {
		return VulnerabilityModel{}, fmt.Errorf("unable to marshal urls of %s: %w", v.ID, err)
	}
	digest, err := Digest(v)
	if err != nil {
		return VulnerabilityModel{}, err
	}

	return VulnerabilityModel{
		ID:           v.ID,
		Products:     string(products),
		Nodes:        string(nodes),
		Description:  v.Description,
		Published:    v.Published,
		LastModified: v.LastModified,
		Severity:     v.Severity,
		Score:        v.Score,
		URLs:         string(urls),
		Digest:       digest,
	}, nil
}

func (VulnerabilityModel) TableName() string {
	return VulnerabilityTableName
}

// Inflate converts the row back into a vulnerability.
func (m *VulnerabilityModel) Inflate() (vulnerability.Vulnerability, error) {
	var nodes []vulnerability.Node
	if err := json.Unmarshal([]byte(m.Nodes), &nodes); err != nil {
		return vulnerability.Vulnerability{}, fmt.Errorf("unable to unmarshal nodes of %s (%+v): %w", m.ID, m.Nodes, err)
	}

	var urls []string
	if m.URLs != "" {
		if err := json.Unmarshal([]byte(m.URLs), &urls); err != nil {
			return vulnerability.Vulnerability{}, fmt.Errorf("unable to unmarshal urls of %s (%+v): %w", m.ID, m.URLs, err)
		}
	}

	return vulnerability.Vulnerability{
		ID:           m.ID,
		Nodes:        nodes,
		Description:  m.Description,
		Published:    m.Published,
		LastModified: m.LastModified,
		Severity:     m.Severity,
		Score:        m.Score,
		URLs:         urls,
	}, nil
}

// ProductNames decodes the product list of the row.
func (m *VulnerabilityModel) ProductNames() ([]string, error) {
	var products []string
	if m.Products == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(m.Products), &products); err != nil {
		return nil, fmt.Errorf("unable to unmarshal products of %s: %w", m.ID, err)
	}
	return products, nil
}

// Digest fingerprints the content of a vulnerability so unchanged re-ingests can be detected.
func Digest(v vulnerability.Vulnerability) (string, error) {
	h, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("unable to hash %s: %w", v.ID, err)
	}
	return strconv.FormatUint(h, 16), nil
}
