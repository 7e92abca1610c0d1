// Package store loads the device profile store: INI-style text with one
// reserved [DEFAULT] section and any number of named target sections.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// DefaultSection is the reserved name of the shared defaults section.
const DefaultSection = "DEFAULT"

var (
	// ErrMalformedConfig indicates the source could not be parsed into sections and keys.
	ErrMalformedConfig = errors.New("malformed profile store")
	// ErrUnknownTarget indicates a section name that is neither DEFAULT nor a declared target.
	ErrUnknownTarget = errors.New("unknown target")
)

// keyAliases maps spellings seen in the wild to their canonical option name.
var keyAliases = map[string]string{
	"enablepassword": "enable_password",
}

// SyntaxError describes a parse failure at a specific line.
type SyntaxError struct {
	Source string
	Line   int
	Reason string
}

// Error implements error.
func (e *SyntaxError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Unwrap lets callers match the failure with errors.Is(err, ErrMalformedConfig).
func (e *SyntaxError) Unwrap() error {
	return ErrMalformedConfig
}

// Section maps lower-cased option names to raw, uninterpolated values.
type Section map[string]string

// Get returns the raw value for key, matching case-insensitively.
func (s Section) Get(key string) (string, bool) {
	v, ok := s[strings.ToLower(key)]
	return v, ok
}

// Clone returns an independent copy of the section.
func (s Section) Clone() Section {
	out := make(Section, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Keys returns the option names in sorted order.
func (s Section) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Document is a parsed profile store. It is immutable after Load and safe
// for concurrent readers.
type Document struct {
	source   string
	defaults Section
	targets  []string
	sections map[string]Section
	warnings []string
}

// Load parses a profile store from r. source names the input in error
// messages and may be empty. No partial document is returned on failure.
func Load(r io.Reader, source string) (*Document, error) {
	p := newParser(source)
	if err := p.parse(r); err != nil {
		return nil, err
	}
	return p.doc, nil
}

// LoadFile parses the profile store at path.
func LoadFile(path string) (*Document, error) {
	// #nosec G304 - path is the operator-selected profile store
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile store: %w", err)
	}
	defer f.Close()

	return Load(f, path)
}

// Source returns the name the document was loaded from.
func (d *Document) Source() string {
	return d.source
}

// Targets returns the declared target names in file order, excluding DEFAULT.
func (d *Document) Targets() []string {
	out := make([]string, len(d.targets))
	copy(out, d.targets)
	return out
}

// HasTarget reports whether name is a declared target section.
func (d *Document) HasTarget(name string) bool {
	_, ok := d.sections[name]
	return ok
}

// Defaults returns a copy of the DEFAULT section. It is empty, never nil,
// when the store declares no defaults.
func (d *Document) Defaults() Section {
	return d.defaults.Clone()
}

// Section returns a copy of the named raw section. DEFAULT is accepted and
// returns the defaults; any other undeclared name fails with ErrUnknownTarget.
func (d *Document) Section(name string) (Section, error) {
	if name == DefaultSection {
		return d.defaults.Clone(), nil
	}
	sec, ok := d.sections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	return sec.Clone(), nil
}

// Warnings returns non-fatal authoring problems found while loading, such
// as option spellings that were folded into their canonical name.
func (d *Document) Warnings() []string {
	out := make([]string, len(d.warnings))
	copy(out, d.warnings)
	return out
}
