package store

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single physical line of the store.
const maxLineSize = 1024 * 1024

type parser struct {
	doc *Document

	line        int
	current     Section
	currentName string
	lastKey     string
	seenDefault bool
}

func newParser(source string) *parser {
	return &parser{
		doc: &Document{
			source:   source,
			defaults: Section{},
			sections: make(map[string]Section),
		},
	}
}

func (p *parser) fail(format string, args ...any) error {
	return &SyntaxError{
		Source: p.doc.source,
		Line:   p.line,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (p *parser) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}
	return nil
}

func (p *parser) parseLine(raw string) error {
	if p.line == 1 {
		raw = strings.TrimPrefix(raw, "\ufeff")
	}
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		p.lastKey = ""
		return nil
	}
	if trimmed[0] == '#' || trimmed[0] == ';' {
		return nil
	}

	// Indented lines continue the previous value.
	if (raw[0] == ' ' || raw[0] == '\t') && p.lastKey != "" {
		p.current[p.lastKey] += "\n" + trimmed
		return nil
	}

	if trimmed[0] == '[' {
		return p.parseHeader(trimmed)
	}

	return p.parseOption(trimmed)
}

func (p *parser) parseHeader(trimmed string) error {
	if !strings.HasSuffix(trimmed, "]") {
		return p.fail("unterminated section header %q", trimmed)
	}
	name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	if name == "" {
		return p.fail("empty section name")
	}

	p.lastKey = ""
	p.currentName = name

	switch {
	case name == DefaultSection:
		if p.seenDefault {
			return p.fail("duplicate section [%s]", name)
		}
		p.seenDefault = true
		p.current = p.doc.defaults
		return nil
	case strings.EqualFold(name, DefaultSection):
		return p.fail("section name %q is reserved; use [%s] for shared defaults", name, DefaultSection)
	}

	if _, exists := p.doc.sections[name]; exists {
		return p.fail("duplicate section [%s]", name)
	}
	sec := Section{}
	p.doc.sections[name] = sec
	p.doc.targets = append(p.doc.targets, name)
	p.current = sec
	return nil
}

func (p *parser) parseOption(trimmed string) error {
	if p.current == nil {
		return p.fail("option %q appears before any section header", trimmed)
	}

	idx := strings.IndexAny(trimmed, "=:")
	if idx < 0 {
		return p.fail("expected key = value, got %q", trimmed)
	}
	key := strings.ToLower(strings.TrimSpace(trimmed[:idx]))
	value := strings.TrimSpace(trimmed[idx+1:])
	if key == "" {
		return p.fail("option with empty name")
	}

	written := key
	if canonical, ok := keyAliases[key]; ok {
		key = canonical
		p.doc.warnings = append(p.doc.warnings, fmt.Sprintf(
			"%s: [%s] option %q is read as %q", p.position(), p.currentName, written, canonical))
	}

	if _, dup := p.current[key]; dup {
		if written != key {
			return p.fail("duplicate option %q in [%s] (also written as %q)", key, p.currentName, written)
		}
		return p.fail("duplicate option %q in [%s]", key, p.currentName)
	}

	p.current[key] = value
	p.lastKey = key
	return nil
}

func (p *parser) position() string {
	if p.doc.source != "" {
		return fmt.Sprintf("%s:%d", p.doc.source, p.line)
	}
	return fmt.Sprintf("line %d", p.line)
}
