/*
Package input turns the paths and glob patterns given on the command line into resolved derivations.
*/
package input

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-multierror"

	"github.com/nixvuln/nixvuln/internal/log"
	"github.com/nixvuln/nixvuln/nixvuln/derivation"
)

// Skip is an input descriptor that does not name a versioned package.
type Skip struct {
	Source string
	Reason string
}

// Result holds everything resolved from the inputs. Derivations are sorted by name and version.
type Result struct {
	Derivations []derivation.Derivation
	Skipped     []Skip
}

type kind int

const (
	unknownKind kind = iota
	atermKind
	jsonKind
)

// Resolve expands every pattern and loads each matching file as either a .drv (ATerm) file or a JSON
// descriptor document. Files that fail to decode are collected into the returned error; whatever resolved
// cleanly is still returned.
func Resolve(patterns []string) (*Result, error) {
	var errs error
	result := &Result{}

	paths, err := expand(patterns)
	if err != nil {
		errs = multierror.Append(errs, err)
	}

	for _, p := range paths {
		if err := result.load(p); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	derivation.Sort(result.Derivations)
	return result, errs
}

// expand resolves glob patterns; plain paths are passed through so that a missing file is reported by load.
func expand(patterns []string) ([]string, error) {
	var errs error
	var paths []string
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		matches := []string{pattern}
		if hasMeta(pattern) {
			var err error
			matches, err = doublestar.Glob(pattern)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("bad pattern %q: %w", pattern, err))
				continue
			}
			if len(matches) == 0 {
				errs = multierror.Append(errs, fmt.Errorf("no files match %q", pattern))
				continue
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	return paths, errs
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func (r *Result) load(path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read input %q: %w", path, err)
	}

	var descriptors []derivation.Descriptor
	switch detect(contents) {
	case atermKind:
		d, err := derivation.Decode(bytes.NewReader(contents), path)
		if err != nil {
			return err
		}
		descriptors = append(descriptors, d)
	case jsonKind:
		descriptors, err = derivation.DecodeJSON(bytes.NewReader(contents))
		if err != nil {
			return fmt.Errorf("unable to decode %q: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported input %q: expected a .drv file or a JSON descriptor document", path)
	}

	for _, desc := range descriptors {
		source := desc.StorePath
		if source == "" {
			source = path
		}
		d, err := derivation.New(desc)
		switch {
		case errors.Is(err, derivation.ErrSkip):
			log.Debugf("%s", err)
			r.Skipped = append(r.Skipped, Skip{Source: source, Reason: err.Error()})
		case err != nil:
			return fmt.Errorf("unable to resolve %q: %w", source, err)
		default:
			r.Derivations = append(r.Derivations, *d)
		}
	}
	return nil
}

func detect(contents []byte) kind {
	trimmed := bytes.TrimSpace(contents)
	if bytes.HasPrefix(trimmed, []byte("Derive(")) {
		return atermKind
	}

	mType := mimetype.Detect(contents)
	if isAncestorOfMimetype(mType, "application/json") {
		return jsonKind
	}
	// mimetype only inspects a prefix of the input, large documents may not be recognized as JSON
	if isAncestorOfMimetype(mType, "text/plain") && len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return jsonKind
	}
	return unknownKind
}

func isAncestorOfMimetype(mType *mimetype.MIME, expected string) bool {
	for cur := mType; cur != nil; cur = cur.Parent() {
		if cur.Is(expected) {
			return true
		}
	}
	return false
}
