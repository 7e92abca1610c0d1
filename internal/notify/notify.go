// Package notify provides desktop notification support for shunctl.
package notify

import (
	"fmt"

	"github.com/xabinapal/shunctl/internal/config"
)

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// NotifyPrompt tells the operator a run is waiting for a secret on the
	// terminal.
	NotifyPrompt(target, field string) error
	// NotifyFailure reports a target that could not be resolved or validated.
	NotifyFailure(target string, err error) error
}

// Option configures a Notifier.
type Option func(*notifier)

// WithBackend sets a custom notification backend (for testing).
func WithBackend(backend Backend) Option {
	return func(n *notifier) {
		n.backend = backend
	}
}

// notifier sends desktop notifications using the system notification service.
type notifier struct {
	onPrompt  bool
	onFailure bool
	backend   Backend
}

// NotifyPrompt implements Notifier.
func (n *notifier) NotifyPrompt(target, field string) error {
	if !n.onPrompt {
		return nil
	}

	title := "shunctl: Credential Required"
	message := fmt.Sprintf("Enter the %s for '%s' in the terminal.", field, target)

	return n.backend.Notify(title, message, "")
}

// NotifyFailure implements Notifier.
func (n *notifier) NotifyFailure(target string, err error) error {
	if !n.onFailure {
		return nil
	}

	title := "shunctl: Profile Failed"
	message := fmt.Sprintf("Profile '%s' is not usable.\nError: %v", target, err)

	return n.backend.Alert(title, message, "")
}

// New creates a new Notifier based on the configuration.
func New(cfg config.NotificationConfig, opts ...Option) Notifier {
	n := &notifier{
		onPrompt:  cfg.Enabled && cfg.OnPrompt,
		onFailure: cfg.Enabled && cfg.OnFailure,
		backend:   newDesktopBackend(),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Nop returns a Notifier that never sends anything.
func Nop() Notifier {
	return &notifier{backend: newDesktopBackend()}
}
