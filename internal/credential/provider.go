package credential

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/xabinapal/shunctl/internal/keyring"
	"github.com/xabinapal/shunctl/internal/logging"
	"github.com/xabinapal/shunctl/internal/notify"
	"github.com/xabinapal/shunctl/internal/profile"
	"github.com/xabinapal/shunctl/internal/secret"
)

// Credentials holds the secrets acquired for one run.
type Credentials struct {
	Password       secret.Secret
	EnablePassword secret.Secret
	// Specs records how each secret field was obtained.
	Specs map[string]Spec
}

// Sources returns Specs as strings, keyed by field.
func (c *Credentials) Sources() map[string]string {
	out := make(map[string]string, len(c.Specs))
	for field, spec := range c.Specs {
		out[field] = spec.String()
	}
	return out
}

// Zero wipes the acquired secrets.
func (c *Credentials) Zero() {
	c.Password.Zero()
	c.EnablePassword.Zero()
}

// Option configures a Provider.
type Option func(*Provider)

// WithKeyring sets the keyring consulted for profiles that opt in.
func WithKeyring(store keyring.Store) Option {
	return func(p *Provider) { p.keyring = store }
}

// WithKeyringForAll makes every profile consult the keyring, not only those
// with credential_store = keyring.
func WithKeyringForAll(enabled bool) Option {
	return func(p *Provider) { p.keyringAll = enabled }
}

// WithPrompter sets the interactive prompter.
func WithPrompter(pr Prompter) Option {
	return func(p *Provider) { p.prompter = pr }
}

// WithNotifier sets the notifier used when a run blocks on a prompt.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Provider) { p.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// Provider acquires the secret fields of resolved profiles. It is the only
// component that decodes or prompts, and it never logs secret values.
type Provider struct {
	keyring    keyring.Store
	keyringAll bool
	prompter   Prompter
	notifier   notify.Notifier
	logger     *logging.Logger
}

// NewProvider creates a Provider. Without options it prompts on the process
// terminal and never consults a keyring.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		prompter: NewTerminalPrompter(os.Stdin, os.Stderr),
		notifier: notify.Nop(),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.notifier == nil {
		p.notifier = notify.Nop()
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	return p
}

// Provide acquires password and enable_password for an interpolated
// profile. On error, any secret acquired so far is wiped.
func (p *Provider) Provide(ctx context.Context, target string, v profile.Values) (*Credentials, error) {
	creds := &Credentials{Specs: make(map[string]Spec, len(profile.SecretOptions))}
	useKeyring := p.keyring != nil && (p.keyringAll || keyringRequested(v))

	for _, field := range profile.SecretOptions {
		value, spec, err := p.acquire(ctx, target, v, field, useKeyring)
		if err != nil {
			creds.Zero()
			return nil, err
		}
		creds.Specs[field] = spec

		switch field {
		case profile.OptPassword:
			creds.Password = value
		case profile.OptEnablePassword:
			creds.EnablePassword = value
		}
	}
	return creds, nil
}

func (p *Provider) acquire(ctx context.Context, target string, v profile.Values, field string, useKeyring bool) (secret.Secret, Spec, error) {
	log := p.logger.With("target", target, "field", field)

	spec, err := Classify(v, field, useKeyring)
	if err != nil {
		return nil, SpecNone, fmt.Errorf("target %q: %w", target, err)
	}
	log.Debug("credential source selected", "source", spec)

	switch spec {
	case SpecNone, SpecSSHKey:
		return nil, spec, nil

	case SpecEncoded:
		value, err := decodeBase64(field, v.Get(field))
		if err != nil {
			return nil, spec, fmt.Errorf("target %q: %w", target, err)
		}
		return value, spec, nil

	case SpecEmbedded:
		return secret.FromString(v.Get(field)), spec, nil

	case SpecKeyring:
		value, err := p.keyring.Get(target, field)
		switch {
		case err == nil && value != "":
			return secret.FromString(value), spec, nil
		case err == nil, errors.Is(err, keyring.ErrSecretNotFound):
			log.Debug("no keyring entry, falling back to prompt")
		default:
			log.Warn("keyring lookup failed, falling back to prompt", "error", err)
		}
	}

	value, err := p.prompt(ctx, target, field)
	return value, SpecPrompt, err
}

func (p *Provider) prompt(ctx context.Context, target, field string) (secret.Secret, error) {
	if p.prompter == nil {
		return nil, fmt.Errorf("%w: %s for %q (no prompter)", ErrMissingCredential, field, target)
	}

	if err := p.notifier.NotifyPrompt(target, field); err != nil {
		p.logger.Debug("prompt notification failed", "target", target, "error", err)
	}

	value, err := p.prompter.Prompt(ctx, Request{Target: target, Field: field})
	if err != nil {
		if errors.Is(err, ErrMissingCredential) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s for %q: %v", ErrMissingCredential, field, target, err)
	}
	if value.Empty() {
		return nil, fmt.Errorf("%w: empty %s entered for %q", ErrMissingCredential, field, target)
	}
	return value, nil
}
