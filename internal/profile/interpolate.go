package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInterpolationCycle indicates a value that references itself, directly or transitively.
	ErrInterpolationCycle = errors.New("interpolation cycle")
	// ErrUnresolvedReference indicates a placeholder naming a key absent from the profile.
	ErrUnresolvedReference = errors.New("unresolved reference")
)

// placeholderRe matches %(name)s and %(name). A trailing "s" directly after
// the closing parenthesis always belongs to the placeholder, so a literal
// suffix starting with "s" is written %(name)ss.
var placeholderRe = regexp.MustCompile(`%\(([^()]*)\)s?`)

// CycleError names the keys forming an interpolation cycle, first key repeated last.
type CycleError struct {
	Path []string
}

// Error implements error.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInterpolationCycle, strings.Join(e.Path, " -> "))
}

// Unwrap implements errors.Unwrap.
func (e *CycleError) Unwrap() error {
	return ErrInterpolationCycle
}

// ReferenceError names an option whose value references a missing key.
type ReferenceError struct {
	Key       string
	Reference string
	Reason    string
}

// Error implements error.
func (e *ReferenceError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: option %q: %s", ErrUnresolvedReference, e.Key, e.Reason)
	}
	return fmt.Sprintf("%s: option %q references %q, which is not set", ErrUnresolvedReference, e.Key, e.Reference)
}

// Unwrap implements errors.Unwrap.
func (e *ReferenceError) Unwrap() error {
	return ErrUnresolvedReference
}

// References returns the distinct keys referenced by value, lower-cased, in
// order of first appearance.
func References(value string) []string {
	matches := placeholderRe.FindAllStringSubmatch(value, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.ToLower(strings.TrimSpace(m[1]))
		if !seen[name] {
			seen[name] = true
			refs = append(refs, name)
		}
	}
	return refs
}

// BareReference reports the key named by value when value is a single
// placeholder and nothing else, e.g. enable_password = %(password)s.
func BareReference(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	loc := placeholderRe.FindStringSubmatchIndex(trimmed)
	if loc == nil || loc[0] != 0 || loc[1] != len(trimmed) {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(trimmed[loc[2]:loc[3]])), true
}

// SecretDependents returns, sorted, the non-secret options of a raw profile
// whose values reference a secret option directly or through other options.
// After interpolation they carry secret material.
func SecretDependents(raw Values) []string {
	tainted := make(map[string]bool, len(SecretOptions))
	for _, s := range SecretOptions {
		tainted[s] = true
	}
	for changed := true; changed; {
		changed = false
		for k, v := range raw {
			if tainted[k] {
				continue
			}
			for _, r := range References(v) {
				if tainted[r] {
					tainted[k] = true
					changed = true
					break
				}
			}
		}
	}

	var out []string
	for _, k := range raw.Keys() {
		if tainted[k] && !IsSecretOption(k) {
			out = append(out, k)
		}
	}
	return out
}

// Interpolate expands placeholders using other values of the same profile.
// Keys are evaluated in dependency order; the input is not modified.
// Running it again on its own output returns an equal profile.
//
// Both %(name)s and %(name) are placeholders. An "s" right after the closing
// parenthesis is consumed as part of the placeholder: with host = fw1,
// "%(host)south" expands to "fw1outh" and "%(host)ssouth" to "fw1south".
func Interpolate(v Values) (Values, error) {
	keys := v.Keys()

	deps := make(map[string][]string, len(v))
	for _, k := range keys {
		refs := References(v[k])
		for _, r := range refs {
			if _, ok := v[r]; !ok {
				return nil, &ReferenceError{Key: k, Reference: r}
			}
		}
		deps[k] = refs
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(v))
	out := make(Values, len(v))
	var stack []string

	var visit func(k string) error
	visit = func(k string) error {
		switch state[k] {
		case done:
			return nil
		case visiting:
			start := 0
			for i, s := range stack {
				if s == k {
					start = i
					break
				}
			}
			path := append(append([]string{}, stack[start:]...), k)
			return &CycleError{Path: path}
		}

		state[k] = visiting
		stack = append(stack, k)
		for _, r := range deps[k] {
			if err := visit(r); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[k] = done

		expanded := expand(v[k], out)
		if placeholderRe.MatchString(expanded) {
			return &ReferenceError{Key: k, Reason: "expansion produced a new placeholder"}
		}
		out[k] = expanded
		return nil
	}

	for _, k := range keys {
		if err := visit(k); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// expand substitutes every placeholder in value with its resolved value.
func expand(value string, resolved Values) string {
	if !strings.Contains(value, "%(") {
		return value
	}
	return placeholderRe.ReplaceAllStringFunc(value, func(m string) string {
		sub := placeholderRe.FindStringSubmatch(m)
		return resolved[strings.ToLower(strings.TrimSpace(sub[1]))]
	})
}
