package derivation

import (
	"strings"

	"github.com/tidwall/gjson"
)

// structuredAttrsKey is the environment key under which Nix places all attributes of a derivation built with
// __structuredAttrs, as a single JSON document.
const structuredAttrsKey = "__json"

// Descriptor is the raw input record for one build unit before it is resolved into a Derivation.
type Descriptor struct {
	// Name and Patches take precedence over anything found in Env.
	Name    string
	Patches string
	// Env is the builder environment of the derivation.
	Env map[string]string
	// StructuredAttrs is the JSON attribute blob, if it was given outside of Env.
	StructuredAttrs string
	StorePath       string
}

func (d Descriptor) structuredAttrs() string {
	if d.StructuredAttrs != "" {
		return d.StructuredAttrs
	}
	return d.Env[structuredAttrsKey]
}

func (d Descriptor) name() (string, error) {
	if d.Name != "" {
		return d.Name, nil
	}
	if name := d.Env["name"]; name != "" {
		return name, nil
	}
	if attrs := d.structuredAttrs(); attrs != "" {
		if !gjson.Valid(attrs) {
			return "", &DecodeError{Source: d.StorePath, Reason: "structured attrs are not valid JSON"}
		}
		if name := gjson.Get(attrs, "name"); name.Type == gjson.String && name.Str != "" {
			return name.Str, nil
		}
	}
	return "", ErrNoName
}

func (d Descriptor) patches() string {
	if d.Patches != "" {
		return d.Patches
	}
	if patches, ok := d.Env["patches"]; ok {
		return patches
	}
	if attrs := d.structuredAttrs(); attrs != "" {
		return patchText(gjson.Get(attrs, "patches"))
	}
	return ""
}

// patchText flattens a patches attribute that may be a single string or a list of strings.
func patchText(value gjson.Result) string {
	if !value.IsArray() {
		if value.Type == gjson.String {
			return value.Str
		}
		return ""
	}
	var parts []string
	for _, p := range value.Array() {
		if p.Type == gjson.String {
			parts = append(parts, p.Str)
		}
	}
	return strings.Join(parts, " ")
}
