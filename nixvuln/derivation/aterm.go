package derivation

import (
	"fmt"
	"strings"
)

// DecodeError reports a descriptor that could not be decoded at all.
type DecodeError struct {
	Source string
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("unable to decode derivation at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("unable to decode derivation %q at offset %d: %s", e.Source, e.Offset, e.Reason)
}

// term is one node of an ATerm document: a string, a list or a tuple. Constructor applications are only
// permitted at the root.
type term struct {
	str    string
	isStr  bool
	items  []term
	isList bool
}

type atermParser struct {
	src  string
	pos  int
	name string
}

// parseDerive reads the `Derive(outputs, inputDrvs, inputSrcs, system, builder, args, env)` form of a .drv
// file and returns its environment.
func parseDerive(src, source string) (map[string]string, error) {
	p := &atermParser{src: src, name: source}

	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], "Derive") {
		return nil, p.errorf("expected Derive constructor")
	}
	p.pos += len("Derive")

	args, err := p.sequence('(', ')')
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing data after derivation")
	}
	if len(args) != 7 {
		return nil, p.errorf(fmt.Sprintf("Derive takes 7 arguments, got %d", len(args)))
	}

	envTerm := args[6]
	if !envTerm.isList {
		return nil, p.errorf("derivation environment is not a list")
	}
	env := make(map[string]string, len(envTerm.items))
	for _, pair := range envTerm.items {
		if pair.isList || pair.isStr || len(pair.items) != 2 || !pair.items[0].isStr || !pair.items[1].isStr {
			return nil, p.errorf("environment entries must be (key, value) string pairs")
		}
		env[pair.items[0].str] = pair.items[1].str
	}
	return env, nil
}

func (p *atermParser) errorf(reason string) error {
	return &DecodeError{Source: p.name, Offset: p.pos, Reason: reason}
}

func (p *atermParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *atermParser) value() (term, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return term{}, p.errorf("unexpected end of input")
	}
	switch p.src[p.pos] {
	case '"':
		s, err := p.string()
		return term{str: s, isStr: true}, err
	case '[':
		items, err := p.sequence('[', ']')
		return term{items: items, isList: true}, err
	case '(':
		items, err := p.sequence('(', ')')
		return term{items: items}, err
	}
	return term{}, p.errorf(fmt.Sprintf("unexpected character %q", p.src[p.pos]))
}

// sequence reads comma separated values enclosed in open/close.
func (p *atermParser) sequence(open, close byte) ([]term, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != open {
		return nil, p.errorf(fmt.Sprintf("expected %q", open))
	}
	p.pos++

	var items []term
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == close {
		p.pos++
		return items, nil
	}
	for {
		item, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf(fmt.Sprintf("unterminated sequence, expected %q", close))
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case close:
			p.pos++
			return items, nil
		default:
			return nil, p.errorf(fmt.Sprintf("expected ',' or %q", close))
		}
	}
}

func (p *atermParser) string() (string, error) {
	// opening quote
	p.pos++

	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errorf("unterminated escape sequence")
			}
			switch e := p.src[p.pos]; e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(e)
			}
		default:
			sb.WriteByte(c)
		}
		p.pos++
	}
	return "", p.errorf("unterminated string")
}
