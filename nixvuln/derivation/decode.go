package derivation

import (
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/nixvuln/nixvuln/internal/log"
)

// Load reads a .drv file from the store and resolves it.
func Load(path string) (*Derivation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open derivation: %w", err)
	}
	defer log.CloseAndLogError(f, path)

	d, err := Decode(f, path)
	if err != nil {
		return nil, err
	}
	return New(d)
}

// Decode reads one derivation in ATerm format into a descriptor. The storePath is recorded on the descriptor
// and used in error messages.
func Decode(r io.Reader, storePath string) (Descriptor, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return Descriptor{}, fmt.Errorf("unable to read derivation: %w", err)
	}

	env, err := parseDerive(string(contents), storePath)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Env: env, StorePath: storePath}, nil
}

// DecodeJSON reads descriptors in any of these JSON shapes: a single descriptor object, an array of
// descriptor objects, or an object keyed by store path as printed by `nix derivation show`.
func DecodeJSON(r io.Reader) ([]Descriptor, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read descriptors: %w", err)
	}
	if !gjson.ValidBytes(contents) {
		return nil, &DecodeError{Reason: "invalid JSON"}
	}

	doc := gjson.ParseBytes(contents)
	switch {
	case doc.IsArray():
		var descriptors []Descriptor
		for i, item := range doc.Array() {
			if !item.IsObject() {
				return nil, &DecodeError{Reason: fmt.Sprintf("descriptor %d is not an object", i)}
			}
			descriptors = append(descriptors, descriptorFromJSON(item, ""))
		}
		return descriptors, nil
	case doc.IsObject():
		if isDescriptorObject(doc) {
			return []Descriptor{descriptorFromJSON(doc, "")}, nil
		}
		var descriptors []Descriptor
		var decodeErr error
		doc.ForEach(func(key, value gjson.Result) bool {
			if !value.IsObject() {
				decodeErr = &DecodeError{Source: key.String(), Reason: "derivation is not an object"}
				return false
			}
			descriptors = append(descriptors, descriptorFromJSON(value, key.String()))
			return true
		})
		return descriptors, decodeErr
	}
	return nil, &DecodeError{Reason: "expected a JSON object or array"}
}

func isDescriptorObject(obj gjson.Result) bool {
	for _, key := range []string{"name", "env", "patches", structuredAttrsKey} {
		if obj.Get(key).Exists() {
			return true
		}
	}
	return false
}

func descriptorFromJSON(obj gjson.Result, storePath string) Descriptor {
	d := Descriptor{
		Patches:         patchText(obj.Get("patches")),
		StructuredAttrs: obj.Get(structuredAttrsKey).String(),
		StorePath:       storePath,
	}
	if name := obj.Get("name"); name.Type == gjson.String {
		d.Name = name.Str
	}
	if sp := obj.Get("storePath"); d.StorePath == "" && sp.Type == gjson.String {
		d.StorePath = sp.Str
	}

	if env := obj.Get("env"); env.IsObject() {
		d.Env = make(map[string]string)
		env.ForEach(func(key, value gjson.Result) bool {
			d.Env[key.String()] = value.String()
			return true
		})
	}
	return d
}
