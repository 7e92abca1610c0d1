// Package engine exposes the boundary used by shun automation jobs: turn a
// target name into a validated profile with credentials materialized.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/xabinapal/shunctl/internal/credential"
	"github.com/xabinapal/shunctl/internal/logging"
	"github.com/xabinapal/shunctl/internal/notify"
	"github.com/xabinapal/shunctl/internal/profile"
	"github.com/xabinapal/shunctl/internal/store"
)

// Option configures an Engine.
type Option func(*Engine)

// WithProvider sets the credential provider.
func WithProvider(p *credential.Provider) Option {
	return func(e *Engine) { e.creds = p }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithNotifier sets the notifier told about failed runs.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithParallelism bounds how many targets GetEffectiveProfiles resolves at
// once. Values below one mean GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(e *Engine) { e.parallelism = n }
}

// Engine resolves profiles from one loaded document. The document is never
// modified, so an Engine is safe for concurrent use.
type Engine struct {
	doc         *store.Document
	creds       *credential.Provider
	logger      *logging.Logger
	notifier    notify.Notifier
	parallelism int
}

// New creates an Engine over an already loaded document.
func New(doc *store.Document, opts ...Option) *Engine {
	e := &Engine{doc: doc}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.Discard()
	}
	if e.notifier == nil {
		e.notifier = notify.Nop()
	}
	if e.creds == nil {
		e.creds = credential.NewProvider(credential.WithLogger(e.logger))
	}
	if e.parallelism < 1 {
		e.parallelism = runtime.GOMAXPROCS(0)
	}
	return e
}

// Open loads the profile store at path and creates an Engine over it.
func Open(path string, opts ...Option) (*Engine, error) {
	doc, err := store.LoadFile(path)
	if err != nil {
		return nil, err
	}
	e := New(doc, opts...)
	for _, w := range doc.Warnings() {
		e.logger.Warn(w)
	}
	return e, nil
}

// Document returns the loaded profile store.
func (e *Engine) Document() *store.Document {
	return e.doc
}

// Targets lists the declared targets in file order.
func (e *Engine) Targets() []string {
	return e.doc.Targets()
}

// Resolve overlays and interpolates a target without acquiring credentials.
// Secret options keep their raw values, and so do the options Sensitive
// reports, so callers must not print them.
func (e *Engine) Resolve(target string) (*profile.Resolution, error) {
	res, err := profile.ResolveWithOrigin(e.doc, target)
	if err != nil {
		return nil, err
	}

	if err := res.Interpolate(); err != nil {
		return nil, fmt.Errorf("target %q: %w", target, err)
	}
	return res, nil
}

// GetEffectiveProfile runs the full pipeline for one target: resolve,
// interpolate, acquire credentials and validate. The returned profile owns
// its secrets; call Zero once the run is over.
func (e *Engine) GetEffectiveProfile(ctx context.Context, target string) (*profile.Effective, error) {
	eff, err := e.effectiveProfile(ctx, target)
	if err != nil {
		e.logger.Error("profile not usable", "target", target, "error", err)
		if !errors.Is(err, context.Canceled) {
			if nerr := e.notifier.NotifyFailure(target, err); nerr != nil {
				e.logger.Debug("failure notification failed", "target", target, "error", nerr)
			}
		}
		return nil, err
	}
	return eff, nil
}

func (e *Engine) effectiveProfile(ctx context.Context, target string) (*profile.Effective, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := e.Resolve(target)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("profile resolved", "target", target, "options", len(res.Values))

	creds, err := e.creds.Provide(ctx, target, credential.InheritEncoding(res.Raw, res.Values))
	if err != nil {
		return nil, err
	}

	eff := profile.NewEffective(target, res.Values, creds.Password, creds.EnablePassword,
		profile.SecretDependents(res.Raw)...)
	eff.Sources = creds.Sources()

	if err := profile.Validate(eff).Err(); err != nil {
		eff.Zero()
		return nil, err
	}

	e.logger.Info("profile ready", "target", target, "address", eff.Display(profile.OptAddress))
	return eff, nil
}

// Report is the outcome of one target in a batch.
type Report struct {
	Target  string             `json:"target"`
	Profile *profile.Effective `json:"profile,omitempty"`
	Err     error              `json:"-"`
}

// OK reports whether the target produced a usable profile.
func (r Report) OK() bool {
	return r.Err == nil
}

// GetEffectiveProfiles resolves several targets concurrently. Each target is
// independent: a failure is recorded in its Report and never stops the
// others. Reports keep the order of targets.
func (e *Engine) GetEffectiveProfiles(ctx context.Context, targets []string) []Report {
	reports := make([]Report, len(targets))

	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, target := range targets {
		g.Go(func() error {
			eff, err := e.GetEffectiveProfile(ctx, target)
			reports[i] = Report{Target: target, Profile: eff, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return reports
}
