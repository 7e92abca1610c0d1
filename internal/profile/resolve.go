package profile

import (
	"fmt"
	"strings"

	"github.com/xabinapal/shunctl/internal/store"
)

// Origin records which section supplied a resolved value.
type Origin int

const (
	// OriginDefault means the value was inherited from [DEFAULT].
	OriginDefault Origin = iota
	// OriginTarget means the target section set the value.
	OriginTarget
)

// String returns the section kind.
func (o Origin) String() string {
	switch o {
	case OriginDefault:
		return "default"
	case OriginTarget:
		return "target"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Resolution is a resolved profile together with per-key provenance.
// Provenance is diagnostic only.
type Resolution struct {
	Target string
	Values Values
	Origin map[string]Origin
	// Raw holds the values before interpolation. It is nil until
	// Interpolate runs.
	Raw Values
}

// Interpolate expands the resolved values in place, keeping the
// uninterpolated ones in Raw.
func (r *Resolution) Interpolate() error {
	values, err := Interpolate(r.Values)
	if err != nil {
		return err
	}
	r.Raw, r.Values = r.Values, values
	return nil
}

// Sensitive returns the non-secret options whose interpolated values embed
// secret material.
func (r *Resolution) Sensitive() map[string]bool {
	raw := r.Raw
	if raw == nil {
		raw = r.Values
	}
	out := make(map[string]bool)
	for _, k := range SecretDependents(raw) {
		out[k] = true
	}
	return out
}

// Resolve overlays the target section on top of the defaults.
func Resolve(doc *store.Document, target string) (Values, error) {
	res, err := ResolveWithOrigin(doc, target)
	if err != nil {
		return nil, err
	}
	return res.Values, nil
}

// ResolveWithOrigin overlays the target section on top of the defaults and
// records where each value came from. The DEFAULT name is not a valid
// target selector.
func ResolveWithOrigin(doc *store.Document, target string) (*Resolution, error) {
	if strings.EqualFold(target, store.DefaultSection) {
		return nil, fmt.Errorf("%w: %q is reserved for shared defaults", store.ErrUnknownTarget, target)
	}

	sec, err := doc.Section(target)
	if err != nil {
		return nil, err
	}

	return overlay(target, doc.Defaults(), sec), nil
}

// overlay merges two plain maps; top wins on collision.
func overlay(target string, base, top store.Section) *Resolution {
	res := &Resolution{
		Target: target,
		Values: make(Values, len(base)+len(top)),
		Origin: make(map[string]Origin, len(base)+len(top)),
	}
	for k, v := range base {
		res.Values[k] = v
		res.Origin[k] = OriginDefault
	}
	for k, v := range top {
		res.Values[k] = v
		res.Origin[k] = OriginTarget
	}
	return res
}
